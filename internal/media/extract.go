package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"distill/internal/services"
)

// Extractor cuts a time window out of a media file into a standalone audio
// file suitable for upload to a speech-to-text endpoint.
type Extractor interface {
	Extract(ctx context.Context, src Source, startSeconds, durationSeconds float64, outPath string) error
}

// FFmpeg extracts chunk audio with the ffmpeg binary. Audio-only sources
// are stream-copied when the output container matches; video sources and
// container mismatches are transcoded to MP3 at 128 kb/s.
type FFmpeg struct {
	Binary string
}

// NewFFmpeg returns an extractor using the given ffmpeg binary, or "ffmpeg"
// from PATH when empty.
func NewFFmpeg(binary string) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary}
}

// ChunkFileName names the audio file for the chunk at the given index.
// Audio-only sources keep their container extension so the stream can be
// copied without re-encoding; everything else lands in .mp3.
func ChunkFileName(src Source, index int) string {
	ext := ".mp3"
	if !src.HasVideo {
		if srcExt := strings.ToLower(filepath.Ext(src.Path)); srcExt != "" {
			ext = srcExt
		}
	}
	return fmt.Sprintf("chunk_%03d%s", index, ext)
}

func (f *FFmpeg) Extract(ctx context.Context, src Source, startSeconds, durationSeconds float64, outPath string) error {
	if startSeconds < 0 || durationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "media", "extract", "invalid chunk window", nil)
	}
	if strings.TrimSpace(outPath) == "" {
		return services.Wrap(services.ErrValidation, "media", "extract", "empty output path", nil)
	}

	args := []string{
		"-v", "error",
		"-hide_banner",
		"-ss", formatSeconds(startSeconds),
		"-t", formatSeconds(durationSeconds),
		"-i", src.Path,
		"-vn",
	}
	if copyAudio(src, outPath) {
		args = append(args, "-acodec", "copy")
	} else {
		args = append(args, "-acodec", "libmp3lame", "-b:a", "128k")
	}
	args = append(args, "-y", outPath)

	cmd := exec.CommandContext(ctx, f.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := fmt.Sprintf("ffmpeg extract %s: %s", filepath.Base(outPath), strings.TrimSpace(string(output)))
		return services.Wrap(services.ErrTransient, "media", "extract", msg, err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "media", "extract", "missing extracted chunk", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrTransient, "media", "extract", "extracted chunk is empty", nil)
	}
	return nil
}

func copyAudio(src Source, outPath string) bool {
	if src.HasVideo {
		return false
	}
	return strings.EqualFold(filepath.Ext(src.Path), filepath.Ext(outPath))
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
