package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"distill/internal/services"
)

// Source describes a probed media file. Values are fixed at probe time;
// downstream stages treat a Source as read-only.
type Source struct {
	Path            string
	FormatName      string
	DurationSeconds float64
	DurationKnown   bool
	SizeBytes       int64
	HasVideo        bool
	HasAudio        bool
	AudioCodec      string
	SampleRate      int
	Channels        int
}

// Prober inspects a media file and returns its description. The production
// implementation shells out to ffprobe; tests substitute fixed sources.
type Prober interface {
	Probe(ctx context.Context, path string) (Source, error)
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type probeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// FFprobe probes media files with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// NewFFprobe returns a prober using the given ffprobe binary, or "ffprobe"
// from PATH when empty.
func NewFFprobe(binary string) *FFprobe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{Binary: binary}
}

// Probe runs ffprobe against path and builds a Source from the JSON output.
// A file with no audio stream is rejected; a missing or non-numeric duration
// yields DurationKnown == false rather than an error, since duration may
// still be resolvable by other means (or the caller may refuse to chunk).
func (f *FFprobe) Probe(ctx context.Context, path string) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Source{}, services.Wrap(services.ErrValidation, "media", "probe", "empty media path", nil)
	}

	cmd := exec.CommandContext(ctx, f.Binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := fmt.Sprintf("ffprobe failed for %s: %s", filepath.Base(path), strings.TrimSpace(string(output)))
		return Source{}, services.Wrap(services.ErrTransient, "media", "probe", msg, err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Source{}, services.Wrap(services.ErrPermanent, "media", "probe", "parse ffprobe output", err)
	}

	src := Source{
		Path:       path,
		FormatName: result.Format.FormatName,
		SizeBytes:  parseInt64(result.Format.Size),
	}
	for _, stream := range result.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			src.HasVideo = true
		case "audio":
			if !src.HasAudio {
				src.HasAudio = true
				src.AudioCodec = stream.CodecName
				src.SampleRate = int(parseInt64(stream.SampleRate))
				src.Channels = stream.Channels
			}
		}
	}
	if !src.HasAudio {
		return Source{}, services.Wrap(services.ErrValidation, "media", "probe", "no audio stream in "+filepath.Base(path), nil)
	}

	duration := parseFloat(result.Format.Duration)
	if duration <= 0 {
		// Some containers only report duration per stream.
		for _, stream := range result.Streams {
			if d := parseFloat(stream.Duration); d > duration {
				duration = d
			}
		}
	}
	if duration > 0 {
		src.DurationSeconds = duration
		src.DurationKnown = true
	}
	return src, nil
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

func parseInt64(value string) int64 {
	parsed := parseFloat(value)
	if parsed < 0 {
		return 0
	}
	return int64(parsed)
}
