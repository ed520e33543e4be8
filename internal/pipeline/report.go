package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Overall result labels in the final report.
const (
	ResultSucceeded = "succeeded"
	ResultPartial   = "partially_succeeded"
	ResultFailed    = "failed"
)

// Quality flags attached to degraded but usable results.
const (
	FlagTranscriptPartial = "transcript_partial"
	FlagSynthesisPartial  = "synthesis_partial"
)

// ChunkStatus records the fate of one transcription chunk.
type ChunkStatus struct {
	Index        int     `json:"index"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Failed       bool    `json:"failed"`
	Error        string  `json:"error,omitempty"`
}

// Report is the structured result of a completed pipeline run. Field order
// and sorted slices keep the JSON encoding deterministic, so identical
// inputs produce byte-identical reports.
type Report struct {
	SourcePath      string        `json:"source_path"`
	DurationSeconds float64       `json:"duration_seconds"`
	Template        string        `json:"template"`
	Result          string        `json:"result"`
	QualityFlags    []string      `json:"quality_flags,omitempty"`
	Chunks          []ChunkStatus `json:"chunks"`
	FailedChunks    []int         `json:"failed_chunks,omitempty"`
	SynthesisMode   string        `json:"synthesis_mode"`
	SegmentCount    int           `json:"segment_count"`
	FailedSegments  []int         `json:"failed_segments,omitempty"`
	Transcript      string        `json:"transcript"`
	Output          string        `json:"output"`
}

// Summary is a one-line human description of the result.
func (r *Report) Summary() string {
	switch r.Result {
	case ResultSucceeded:
		return fmt.Sprintf("succeeded (%d chunks)", len(r.Chunks))
	case ResultPartial:
		return fmt.Sprintf("partially succeeded (%d of %d chunks failed)", len(r.FailedChunks), len(r.Chunks))
	default:
		return r.Result
	}
}

// MarshalIndent renders the report as stable, human-readable JSON.
func (r *Report) MarshalIndent() ([]byte, error) {
	r.normalize()
	return json.MarshalIndent(r, "", "  ")
}

func (r *Report) normalize() {
	sort.Ints(r.FailedChunks)
	sort.Ints(r.FailedSegments)
	sort.Strings(r.QualityFlags)
	sort.Slice(r.Chunks, func(i, j int) bool { return r.Chunks[i].Index < r.Chunks[j].Index })
}
