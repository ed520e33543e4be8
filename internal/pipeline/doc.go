// Package pipeline owns the job lifecycle: a sequential state machine
// driving chunk planning, transcription, and synthesis, with a partial-
// failure policy deciding whether a degraded transcript still warrants
// synthesis. Concurrency lives inside the stage orchestrators; the
// controller's own transitions are single-threaded.
package pipeline
