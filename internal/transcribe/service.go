package transcribe

import (
	"context"
)

// Request asks for a single chunk's audio to be transcribed. Start and end
// locate the chunk on the original source timeline, for logging and segment
// offsetting.
type Request struct {
	AudioPath    string
	Index        int
	StartSeconds float64
	EndSeconds   float64
	// Language is an ISO 639-1 hint; empty means auto-detect.
	Language string
}

// Segment is one timed span of recognized speech, with times relative to
// the chunk's own audio.
type Segment struct {
	StartSeconds float64
	EndSeconds   float64
	Text         string
}

// Result is the transcription of one chunk.
type Result struct {
	Text            string
	Language        string
	DurationSeconds float64
	Segments        []Segment
}

// Service transcribes one chunk of audio. Implementations must be safe for
// concurrent use; the orchestrator calls Transcribe from multiple workers.
type Service interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
}
