// Package transcribe turns planned media chunks into a merged transcript.
//
// The orchestrator extracts each chunk's audio, fans calls out to a
// speech-to-text Service under a bounded worker pool, retries transient
// failures per chunk, and reassembles results in source order. Chunks that
// exhaust their retries leave a placeholder in the transcript instead of
// failing the whole pass; the caller decides, from the failure ratio,
// whether the pass is usable.
package transcribe
