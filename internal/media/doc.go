// Package media wraps the ffprobe and ffmpeg binaries behind small
// interfaces. Probing yields an immutable Source description used for
// chunk planning; extraction cuts chunk windows into standalone audio
// files for transcription.
package media
