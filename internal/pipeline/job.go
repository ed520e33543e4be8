package pipeline

import (
	"time"
)

// Status is a pipeline job's lifecycle state.
type Status string

// Job states. Transitions run strictly in order; failed is reachable from
// any non-terminal state.
const (
	StatusQueued       Status = "queued"
	StatusChunking     Status = "chunking"
	StatusTranscribing Status = "transcribing"
	StatusSynthesizing Status = "synthesizing"
	StatusMerging      Status = "merging"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var nextStatus = map[Status]Status{
	StatusQueued:       StatusChunking,
	StatusChunking:     StatusTranscribing,
	StatusTranscribing: StatusSynthesizing,
	StatusSynthesizing: StatusMerging,
	StatusMerging:      StatusCompleted,
}

// CanTransition reports whether moving from one status to another is legal:
// either the single sequential successor, or the failure edge from any
// non-terminal state.
func CanTransition(from, to Status) bool {
	if to == StatusFailed {
		return !from.Terminal()
	}
	return nextStatus[from] == to
}

// Job is one pipeline run over one media source.
type Job struct {
	ID         string
	SourcePath string
	Status     Status
	// ErrorMessage holds the terminal failure reason when Status is failed.
	ErrorMessage string
	Report       *Report
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
