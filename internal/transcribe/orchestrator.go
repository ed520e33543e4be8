package transcribe

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"distill/internal/chunker"
	"distill/internal/logging"
	"distill/internal/media"
	"distill/internal/retry"
	"distill/internal/services"
)

// OrchestratorConfig tunes the chunk fan-out.
type OrchestratorConfig struct {
	// Workers bounds concurrent transcription calls. Defaults to 3.
	Workers int
	// TimeoutPerChunk bounds a single transcription attempt, extraction
	// included. Zero means no per-chunk deadline.
	TimeoutPerChunk time.Duration
	// Language is the optional language hint forwarded with every request.
	Language string
	// TrimStrategy picks how overlap lead-in is removed when merging.
	TrimStrategy string
	// Retry governs per-chunk retries around the transcription call.
	Retry retry.Policy
}

// Outcome summarizes a full transcription pass over one source.
type Outcome struct {
	// Transcript is the merged text, placeholders included for failures.
	Transcript string
	// ChunkCount is the number of planned chunks.
	ChunkCount int
	// FailedChunks lists indices that exhausted retries, in ascending order.
	FailedChunks []int
	// ChunkErrors maps failed chunk index to its final error.
	ChunkErrors map[int]error
}

// FailureRatio returns failed chunks over total chunks, 0 for an empty plan.
func (o Outcome) FailureRatio() float64 {
	if o.ChunkCount == 0 {
		return 0
	}
	return float64(len(o.FailedChunks)) / float64(o.ChunkCount)
}

type chunkOutcome struct {
	text string
	err  error
}

// Orchestrator runs the transcription stage: extract each planned chunk's
// audio, transcribe chunks concurrently under a bounded worker pool, and
// merge the results back into source order.
type Orchestrator struct {
	service   Service
	extractor media.Extractor
	cfg       OrchestratorConfig
	logger    *slog.Logger
}

// NewOrchestrator wires a transcription orchestrator. A nil logger disables
// logging.
func NewOrchestrator(service Service, extractor media.Extractor, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.TrimStrategy == "" {
		cfg.TrimStrategy = TrimProportional
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		service:   service,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger.With(logging.String(logging.FieldComponent, "transcribe")),
	}
}

// Run transcribes every planned chunk of src, staging extracted audio under
// stagingDir. Individual chunk failures do not abort the pass; they are
// recorded in the outcome for the caller's failure policy. Run itself fails
// only on invalid input or context cancellation. Cancellation stops dispatch
// and further retries; attempts already in flight finish or time out on
// their own, and their results are kept in the returned outcome.
func (o *Orchestrator) Run(ctx context.Context, src media.Source, chunks []chunker.Chunk, stagingDir string) (Outcome, error) {
	if len(chunks) == 0 {
		return Outcome{}, services.Wrap(services.ErrValidation, "transcribe", "run", "empty chunk plan", nil)
	}

	workers := o.cfg.Workers
	if workers > len(chunks) {
		workers = len(chunks)
	}

	o.logger.InfoContext(ctx, "transcription started",
		logging.Int("chunks", len(chunks)),
		logging.Int("workers", workers))

	// Index-addressed arena: each slot is written by exactly one worker,
	// so assembly needs no locking.
	outcomes := make([]chunkOutcome, len(chunks))
	tasks := make(chan chunker.Chunk)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range tasks {
				outcomes[chunk.Index] = o.processChunk(ctx, src, chunk, stagingDir)
			}
		}()
	}

	dispatched := 0
feed:
	for _, chunk := range chunks {
		select {
		case tasks <- chunk:
			dispatched++
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Chunks never handed to a worker carry the cancellation error;
		// everything dispatched kept its natural result.
		for i := dispatched; i < len(chunks); i++ {
			outcomes[i] = chunkOutcome{err: err}
		}
		return o.buildOutcome(chunks, outcomes), err
	}

	outcome := o.buildOutcome(chunks, outcomes)
	o.logger.InfoContext(ctx, "transcription finished",
		logging.Int("chunks", outcome.ChunkCount),
		logging.Int("failed", len(outcome.FailedChunks)))
	return outcome, nil
}

func (o *Orchestrator) buildOutcome(chunks []chunker.Chunk, outcomes []chunkOutcome) Outcome {
	outcome := Outcome{
		ChunkCount:  len(chunks),
		ChunkErrors: make(map[int]error),
	}
	for i := range outcomes {
		if outcomes[i].err != nil {
			outcome.FailedChunks = append(outcome.FailedChunks, i)
			outcome.ChunkErrors[i] = outcomes[i].err
		}
	}
	outcome.Transcript = assemble(chunks, outcomes, o.cfg.TrimStrategy)
	return outcome
}

func (o *Orchestrator) processChunk(ctx context.Context, src media.Source, chunk chunker.Chunk, stagingDir string) chunkOutcome {
	ctx = services.WithChunkIndex(ctx, chunk.Index)
	logger := o.logger.With(logging.Int(logging.FieldChunk, chunk.Index))

	audioPath := filepath.Join(stagingDir, media.ChunkFileName(src, chunk.Index))
	req := Request{
		AudioPath:    audioPath,
		Index:        chunk.Index,
		StartSeconds: chunk.StartSeconds,
		EndSeconds:   chunk.EndSeconds,
		Language:     o.cfg.Language,
	}

	var text string
	attempt := func(ctx context.Context) error {
		// A started attempt runs to its own completion or deadline; job
		// cancellation only prevents further attempts and dispatch.
		callCtx := context.WithoutCancel(ctx)
		if o.cfg.TimeoutPerChunk > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, o.cfg.TimeoutPerChunk)
			defer cancel()
		}
		if err := o.extractor.Extract(callCtx, src, chunk.StartSeconds, chunk.DurationSeconds(), audioPath); err != nil {
			return err
		}
		result, err := o.service.Transcribe(callCtx, req)
		if err != nil {
			return err
		}
		text = result.Text
		return nil
	}

	if err := o.cfg.Retry.Do(ctx, attempt); err != nil {
		logger.WarnContext(ctx, "chunk transcription failed", logging.Error(err))
		return chunkOutcome{err: err}
	}
	logger.DebugContext(ctx, "chunk transcribed")
	return chunkOutcome{text: text}
}
