package chunker

import (
	"fmt"
	"math"

	"distill/internal/media"
	"distill/internal/services"
)

// Chunk is one planned slice of a media source. StartSeconds includes the
// overlap lead taken from the previous chunk; EndSeconds is exclusive of
// nothing and never exceeds the source duration.
type Chunk struct {
	Index        int
	StartSeconds float64
	EndSeconds   float64
	// OverlapSeconds is the portion at the start of this chunk that repeats
	// the tail of the previous one. Zero for the first chunk.
	OverlapSeconds float64
}

// Config holds the knobs for chunk planning.
type Config struct {
	// MaxChunkSeconds is the nominal chunk length.
	MaxChunkSeconds float64
	// OverlapSeconds is prepended to every chunk after the first.
	OverlapSeconds float64
	// MinChunkSeconds: sources at or below this length are never split.
	MinChunkSeconds float64
}

// DurationSeconds returns the chunk length including any overlap lead.
func (c Chunk) DurationSeconds() float64 {
	return c.EndSeconds - c.StartSeconds
}

// Plan computes the chunk boundaries for a probed source. Planning is pure
// arithmetic over the probed duration; no media bytes are touched.
//
// Nominal boundaries sit at multiples of MaxChunkSeconds. Every chunk after
// the first starts OverlapSeconds early so words spanning a boundary are
// heard twice rather than lost. Sources shorter than MinChunkSeconds or
// fitting inside a single chunk come back as one chunk covering the whole
// source.
func Plan(src media.Source, cfg Config) ([]Chunk, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if !src.DurationKnown {
		return nil, services.Wrap(services.ErrDurationUnavailable, "chunker", "plan", "source duration unknown", nil)
	}
	duration := src.DurationSeconds
	if duration <= 0 {
		return nil, services.Wrap(services.ErrDurationUnavailable, "chunker", "plan", "source duration unknown", nil)
	}

	if duration <= cfg.MinChunkSeconds || duration <= cfg.MaxChunkSeconds {
		return []Chunk{{Index: 0, StartSeconds: 0, EndSeconds: duration}}, nil
	}

	count := int(math.Ceil(duration / cfg.MaxChunkSeconds))
	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * cfg.MaxChunkSeconds
		overlap := 0.0
		if i > 0 {
			overlap = cfg.OverlapSeconds
			if overlap > start {
				overlap = start
			}
			start -= overlap
		}
		end := float64(i+1) * cfg.MaxChunkSeconds
		if end > duration {
			end = duration
		}
		chunks = append(chunks, Chunk{
			Index:          i,
			StartSeconds:   start,
			EndSeconds:     end,
			OverlapSeconds: overlap,
		})
	}
	return chunks, nil
}

func validate(cfg Config) error {
	if cfg.MaxChunkSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "chunker", "plan", "max chunk seconds must be positive", nil)
	}
	if cfg.OverlapSeconds < 0 {
		return services.Wrap(services.ErrValidation, "chunker", "plan", "overlap seconds must be non-negative", nil)
	}
	if cfg.OverlapSeconds >= cfg.MaxChunkSeconds {
		msg := fmt.Sprintf("overlap (%.0fs) must be smaller than chunk length (%.0fs)", cfg.OverlapSeconds, cfg.MaxChunkSeconds)
		return services.Wrap(services.ErrValidation, "chunker", "plan", msg, nil)
	}
	if cfg.MinChunkSeconds < 0 {
		return services.Wrap(services.ErrValidation, "chunker", "plan", "min chunk seconds must be non-negative", nil)
	}
	return nil
}
