package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"distill/internal/chunker"
	"distill/internal/logging"
	"distill/internal/media"
	"distill/internal/services"
	"distill/internal/synthesize"
	"distill/internal/transcribe"
)

// Transcriber runs the transcription stage over a planned chunk sequence.
type Transcriber interface {
	Run(ctx context.Context, src media.Source, chunks []chunker.Chunk, stagingDir string) (transcribe.Outcome, error)
}

// Synthesizer runs the synthesis stage over a merged transcript.
type Synthesizer interface {
	Run(ctx context.Context, transcript string) (synthesize.Outcome, error)
}

// Store persists job state between transitions. Implementations may be
// nil-safe no-ops; the controller tolerates a nil store.
type Store interface {
	CreateJob(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error
	SaveReport(ctx context.Context, id string, report []byte) error
}

// Config carries the controller's own knobs. Component-level tuning
// (workers, retries, timeouts) lives with the components themselves.
type Config struct {
	Chunking chunker.Config
	// FailureThreshold is the largest tolerated failed-chunk ratio.
	// A run whose ratio exceeds it fails instead of synthesizing.
	FailureThreshold float64
	// Template names the synthesis output shape, recorded in the report.
	Template string
	// StagingDir receives extracted chunk audio.
	StagingDir string
}

// Controller drives one job through the pipeline's sequential states:
// queued, chunking, transcribing, synthesizing, merging, then completed or
// failed. The controller itself is single-threaded; concurrency lives
// inside the stage orchestrators.
type Controller struct {
	prober      media.Prober
	transcriber Transcriber
	synthesizer Synthesizer
	store       Store
	cfg         Config
	logger      *slog.Logger

	now func() time.Time
}

// NewController wires a pipeline controller. The store may be nil; a nil
// logger disables logging.
func NewController(prober media.Prober, transcriber Transcriber, synthesizer Synthesizer, store Store, cfg Config, logger *slog.Logger) *Controller {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 0.2
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		prober:      prober,
		transcriber: transcriber,
		synthesizer: synthesizer,
		store:       store,
		cfg:         cfg,
		logger:      logger.With(logging.String(logging.FieldComponent, "pipeline")),
		now:         time.Now,
	}
}

// Process runs the whole pipeline for one source. The returned job is
// terminal: completed with a report, or failed with an error message. The
// error return is non-nil exactly when the job failed.
func (c *Controller) Process(ctx context.Context, sourcePath string) (*Job, error) {
	job := &Job{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Status:     StatusQueued,
		CreatedAt:  c.now().UTC(),
	}
	job.UpdatedAt = job.CreatedAt
	ctx = services.WithJobID(ctx, job.ID)
	logger := c.logger.With(logging.String(logging.FieldJobID, job.ID))

	if c.store != nil {
		if err := c.store.CreateJob(ctx, job); err != nil {
			return job, c.fail(ctx, job, logger, err)
		}
	}
	logger.InfoContext(ctx, "job queued", logging.String("source", sourcePath))

	// Chunking: probe the source and plan the chunk sequence.
	if err := c.transition(ctx, job, logger, StatusChunking); err != nil {
		return job, err
	}
	src, err := c.prober.Probe(ctx, sourcePath)
	if err != nil {
		return job, c.fail(ctx, job, logger, err)
	}
	chunks, err := chunker.Plan(src, c.cfg.Chunking)
	if err != nil {
		return job, c.fail(ctx, job, logger, err)
	}
	logger.InfoContext(ctx, "chunk plan ready",
		logging.Int("chunks", len(chunks)),
		logging.Float64("duration_seconds", src.DurationSeconds))

	// Transcribing: fan out, then apply the partial-failure policy.
	if err := c.transition(ctx, job, logger, StatusTranscribing); err != nil {
		return job, err
	}
	stagingDir := filepath.Join(c.cfg.StagingDir, job.ID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return job, c.fail(ctx, job, logger, fmt.Errorf("create staging dir: %w", err))
	}
	tOutcome, err := c.transcriber.Run(ctx, src, chunks, stagingDir)
	if err != nil {
		return job, c.fail(ctx, job, logger, err)
	}
	if err := c.checkFailurePolicy(tOutcome); err != nil {
		return job, c.fail(ctx, job, logger, err)
	}

	// Synthesizing.
	if err := c.transition(ctx, job, logger, StatusSynthesizing); err != nil {
		return job, err
	}
	sOutcome, err := c.synthesizer.Run(ctx, tOutcome.Transcript)
	if err != nil {
		return job, c.fail(ctx, job, logger, err)
	}

	// Merging: assemble and persist the final report. Persistence happens
	// here so a store error still fails from a non-terminal state.
	if err := c.transition(ctx, job, logger, StatusMerging); err != nil {
		return job, err
	}
	job.Report = c.buildReport(src, chunks, tOutcome, sOutcome)
	if c.store != nil {
		encoded, err := job.Report.MarshalIndent()
		if err != nil {
			return job, c.fail(ctx, job, logger, err)
		}
		if err := c.store.SaveReport(ctx, job.ID, encoded); err != nil {
			return job, c.fail(ctx, job, logger, err)
		}
	}

	if err := c.transition(ctx, job, logger, StatusCompleted); err != nil {
		return job, err
	}
	logger.InfoContext(ctx, "job completed", logging.String("result", job.Report.Result))
	return job, nil
}

// checkFailurePolicy decides whether a partial transcript still permits
// synthesis. A run where every chunk failed is never usable; otherwise the
// failed-chunk ratio must not exceed the configured threshold.
func (c *Controller) checkFailurePolicy(outcome transcribe.Outcome) error {
	failed := len(outcome.FailedChunks)
	if failed == 0 {
		return nil
	}
	if failed == outcome.ChunkCount {
		return services.Wrap(services.ErrPermanent, "pipeline", "policy", "every chunk failed transcription", nil)
	}
	if ratio := outcome.FailureRatio(); ratio > c.cfg.FailureThreshold {
		msg := fmt.Sprintf("%d of %d chunks failed (%.0f%% > %.0f%% threshold)",
			failed, outcome.ChunkCount, ratio*100, c.cfg.FailureThreshold*100)
		return services.Wrap(services.ErrPermanent, "pipeline", "policy", msg, nil)
	}
	return nil
}

func (c *Controller) buildReport(src media.Source, chunks []chunker.Chunk, tOutcome transcribe.Outcome, sOutcome synthesize.Outcome) *Report {
	report := &Report{
		SourcePath:      src.Path,
		DurationSeconds: src.DurationSeconds,
		Template:        c.cfg.Template,
		Result:          ResultSucceeded,
		SynthesisMode:   sOutcome.Mode,
		SegmentCount:    sOutcome.SegmentCount,
		FailedSegments:  append([]int(nil), sOutcome.FailedSegments...),
		FailedChunks:    append([]int(nil), tOutcome.FailedChunks...),
		Transcript:      tOutcome.Transcript,
		Output:          sOutcome.Output,
	}
	for _, chunk := range chunks {
		status := ChunkStatus{
			Index:        chunk.Index,
			StartSeconds: chunk.StartSeconds,
			EndSeconds:   chunk.EndSeconds,
		}
		if err, ok := tOutcome.ChunkErrors[chunk.Index]; ok {
			status.Failed = true
			status.Error = err.Error()
		}
		report.Chunks = append(report.Chunks, status)
	}
	if len(tOutcome.FailedChunks) > 0 {
		report.Result = ResultPartial
		report.QualityFlags = append(report.QualityFlags, FlagTranscriptPartial)
	}
	if len(sOutcome.FailedSegments) > 0 {
		report.Result = ResultPartial
		report.QualityFlags = append(report.QualityFlags, FlagSynthesisPartial)
	}
	return report
}

func (c *Controller) transition(ctx context.Context, job *Job, logger *slog.Logger, to Status) error {
	if err := ctx.Err(); err != nil {
		return c.fail(ctx, job, logger, err)
	}
	if !CanTransition(job.Status, to) {
		err := services.Wrap(services.ErrPermanent, "pipeline", "transition",
			fmt.Sprintf("illegal transition %s -> %s", job.Status, to), nil)
		return c.fail(ctx, job, logger, err)
	}
	job.Status = to
	job.UpdatedAt = c.now().UTC()
	if c.store != nil {
		if err := c.store.UpdateStatus(ctx, job.ID, to, ""); err != nil {
			return c.fail(ctx, job, logger, err)
		}
	}
	logger.InfoContext(services.WithStage(ctx, string(to)), "state changed",
		logging.String("status", string(to)))
	return nil
}

// fail moves the job to the terminal failed state, best-effort persisting
// the reason. The original error is returned for the caller.
func (c *Controller) fail(ctx context.Context, job *Job, logger *slog.Logger, cause error) error {
	job.Status = StatusFailed
	job.ErrorMessage = cause.Error()
	job.UpdatedAt = c.now().UTC()
	if c.store != nil {
		if err := c.store.UpdateStatus(context.WithoutCancel(ctx), job.ID, StatusFailed, job.ErrorMessage); err != nil {
			logger.WarnContext(ctx, "failed to persist failure", logging.Error(err))
		}
	}
	logger.ErrorContext(ctx, "job failed", logging.Error(cause))
	return cause
}
