package synthesize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"distill/internal/logging"
	"distill/internal/services"
)

// Synthesis modes reported in the outcome.
const (
	ModeDirect    = "direct"
	ModeMapReduce = "map_reduce"
)

// OrchestratorConfig tunes synthesis.
type OrchestratorConfig struct {
	// Template names the output shape. Defaults to basic_summary.
	Template string
	// TargetLength is short, medium, or long.
	TargetLength string
	// BudgetChars is the largest transcript (in runes) sent in a single
	// completion. Longer transcripts go through map-reduce. Defaults to 15000.
	BudgetChars int
	// Workers bounds concurrent segment completions in the map phase.
	// Defaults to 2.
	Workers int
}

// Outcome is the result of one synthesis pass.
type Outcome struct {
	// Output is the synthesized document.
	Output string
	// Mode is ModeDirect or ModeMapReduce.
	Mode string
	// SegmentCount is the number of map segments (1 for direct mode).
	SegmentCount int
	// FailedSegments lists map segments whose notes are missing from the
	// reduce input, in ascending order. Always empty in direct mode.
	FailedSegments []int
}

// FailureRatio returns failed segments over total segments.
func (o Outcome) FailureRatio() float64 {
	if o.SegmentCount == 0 {
		return 0
	}
	return float64(len(o.FailedSegments)) / float64(o.SegmentCount)
}

// Orchestrator runs the synthesis stage. Transcripts within the context
// budget get a single completion; longer ones are condensed per segment
// (map) and merged (reduce).
type Orchestrator struct {
	service Service
	cfg     OrchestratorConfig
	logger  *slog.Logger
}

// NewOrchestrator wires a synthesis orchestrator. A nil logger disables
// logging.
func NewOrchestrator(service Service, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if cfg.Template == "" {
		cfg.Template = "basic_summary"
	}
	if cfg.BudgetChars <= 0 {
		cfg.BudgetChars = 15000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		service: service,
		cfg:     cfg,
		logger:  logger.With(logging.String(logging.FieldComponent, "synthesize")),
	}
}

// Run synthesizes the transcript into the configured template's shape.
// In map-reduce mode, individual segment failures leave gap markers in the
// reduce input and are reported in the outcome; Run fails outright when
// every segment fails, when the reduce call fails, or on cancellation.
// Cancellation stops dispatching map segments; calls already in flight
// finish or time out on their own.
func (o *Orchestrator) Run(ctx context.Context, transcript string) (Outcome, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Outcome{}, services.Wrap(services.ErrValidation, "synthesize", "run", "empty transcript", nil)
	}
	tpl, err := Lookup(o.cfg.Template)
	if err != nil {
		return Outcome{}, err
	}

	if len([]rune(transcript)) <= o.cfg.BudgetChars {
		return o.runDirect(ctx, tpl, transcript)
	}
	return o.runMapReduce(ctx, tpl, transcript)
}

func (o *Orchestrator) runDirect(ctx context.Context, tpl Template, transcript string) (Outcome, error) {
	o.logger.InfoContext(ctx, "synthesis started",
		logging.String("mode", ModeDirect),
		logging.String("template", tpl.Name))

	output, err := o.service.Complete(ctx, tpl.System, userPrompt(transcript, o.cfg.TargetLength))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Output: output, Mode: ModeDirect, SegmentCount: 1}, nil
}

func (o *Orchestrator) runMapReduce(ctx context.Context, tpl Template, transcript string) (Outcome, error) {
	segments := splitByBudget(transcript, o.cfg.BudgetChars)
	o.logger.InfoContext(ctx, "synthesis started",
		logging.String("mode", ModeMapReduce),
		logging.String("template", tpl.Name),
		logging.Int("segments", len(segments)))

	notes := o.mapSegments(ctx, segments)
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Mode: ModeMapReduce, SegmentCount: len(segments)}
	pieces := make([]string, len(segments))
	for i := range notes {
		if notes[i].err != nil {
			outcome.FailedSegments = append(outcome.FailedSegments, i)
			pieces[i] = fmt.Sprintf("[notes unavailable for segment %d]", i)
			continue
		}
		pieces[i] = notes[i].text
	}
	if len(outcome.FailedSegments) == len(segments) {
		return Outcome{}, services.Wrap(services.ErrPermanent, "synthesize", "map", "all segments failed", notes[0].err)
	}

	merged := strings.Join(pieces, "\n\n")
	if len([]rune(merged)) > o.cfg.BudgetChars {
		// Notes longer than the source budget mean the model ignored the
		// condensation instruction; refusing is better than truncating.
		msg := fmt.Sprintf("merged notes (%d chars) exceed budget (%d)", len([]rune(merged)), o.cfg.BudgetChars)
		return Outcome{}, services.Wrap(services.ErrContextBudget, "synthesize", "reduce", msg, nil)
	}

	reduceUser := userPrompt(merged, o.cfg.TargetLength)
	output, err := o.service.Complete(ctx, tpl.System+"\n\n"+reduceSystemPrompt, reduceUser)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Output = output

	o.logger.InfoContext(ctx, "synthesis finished",
		logging.Int("segments", outcome.SegmentCount),
		logging.Int("failed", len(outcome.FailedSegments)))
	return outcome, nil
}

type segmentNote struct {
	text string
	err  error
}

func (o *Orchestrator) mapSegments(ctx context.Context, segments []string) []segmentNote {
	workers := o.cfg.Workers
	if workers > len(segments) {
		workers = len(segments)
	}

	notes := make([]segmentNote, len(segments))
	tasks := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				// A dispatched segment completes or times out on its own;
				// cancellation only stops the feed below.
				callCtx := context.WithoutCancel(ctx)
				text, err := o.service.Complete(callCtx, mapSystemPrompt, "Segment:\n\n"+segments[i])
				if err != nil {
					o.logger.WarnContext(ctx, "segment synthesis failed",
						logging.Int("segment", i), logging.Error(err))
				}
				notes[i] = segmentNote{text: text, err: err}
			}
		}()
	}

feed:
	for i := range segments {
		select {
		case tasks <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()
	return notes
}
