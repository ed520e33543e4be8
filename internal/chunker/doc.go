// Package chunker plans overlapping time slices over a probed media
// source. Planning is deterministic and touches no media bytes; the
// resulting chunks drive audio extraction and transcription downstream.
package chunker
