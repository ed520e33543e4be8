package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"distill/internal/chunker"
	"distill/internal/config"
	"distill/internal/jobs"
	"distill/internal/logging"
	"distill/internal/media"
	"distill/internal/pipeline"
	"distill/internal/retry"
	"distill/internal/synthesize"
	"distill/internal/transcribe"
	"distill/internal/workspace"
)

func newProcessCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		templateFlag string
		languageFlag string
		outputFlag   string
		keepStaging  bool
	)

	cmd := &cobra.Command{
		Use:   "process <media-file-or-url>",
		Short: "Run the full pipeline over a media file or stream URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if templateFlag != "" {
				cfg.Synthesis.Template = templateFlag
			}
			if languageFlag != "" {
				cfg.Transcription.Language = languageFlag
			}

			// Remote sources go straight to ffprobe/ffmpeg; only local
			// paths are resolved and checked up front.
			sourcePath := args[0]
			if !strings.Contains(sourcePath, "://") {
				sourcePath, err = filepath.Abs(sourcePath)
				if err != nil {
					return fmt.Errorf("resolve media path: %w", err)
				}
				if _, err := os.Stat(sourcePath); err != nil {
					return fmt.Errorf("media file: %w", err)
				}
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open jobs store: %w", err)
			}
			defer store.Close()

			ws := workspace.New(cfg.Paths.StagingDir)
			if err := ws.Acquire(); err != nil {
				return err
			}
			defer ws.Release()

			controller, err := buildController(cfg, store, logger, ws)
			if err != nil {
				return err
			}

			job, err := controller.Process(cmd.Context(), sourcePath)
			if job != nil && !keepStaging {
				if cleanErr := ws.CleanJob(job.ID); cleanErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: clean staging for %s: %v\n", job.ID, cleanErr)
				}
			}
			if err != nil {
				return fmt.Errorf("job %s failed: %w", job.ID, err)
			}

			out := cmd.OutOrStdout()
			report := job.Report
			fmt.Fprintf(out, "Job %s %s\n", job.ID, report.Summary())
			for _, flag := range report.QualityFlags {
				fmt.Fprintf(out, "  quality: %s\n", flag)
			}
			if len(report.Chunks) > 0 {
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(report.Chunks))
				for _, chunk := range report.Chunks {
					status := "ok"
					if chunk.Failed {
						status = colorStatus("failed", colorize)
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", chunk.Index),
						formatOffset(chunk.StartSeconds),
						formatOffset(chunk.EndSeconds),
						status,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Chunk", "Start", "End", "Status"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				))
			}
			if outputFlag != "" {
				if err := os.WriteFile(outputFlag, []byte(report.Output+"\n"), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(out, "Output written to %s\n", outputFlag)
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, report.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateFlag, "template", "t", "", "Synthesis template (see 'distill templates')")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Language hint for transcription (e.g. en, spanish)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the synthesized document to a file instead of stdout")
	cmd.Flags().BoolVar(&keepStaging, "keep-staging", false, "Keep extracted chunk audio after the job finishes")
	return cmd
}

// buildController assembles the production pipeline from configuration.
func buildController(cfg *config.Config, store *jobs.Store, logger *slog.Logger, ws *workspace.Workspace) (*pipeline.Controller, error) {
	transcriptionSvc, err := transcribe.NewOpenAIService(transcribe.OpenAIConfig{
		BaseURL:        cfg.Transcription.BaseURL,
		APIKey:         cfg.Transcription.APIKey,
		Model:          cfg.Transcription.Model,
		TimeoutSeconds: cfg.Transcription.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}

	retryPolicy := retry.New(
		cfg.Transcription.MaxRetries,
		time.Duration(cfg.Retry.BaseDelaySeconds*float64(time.Second)),
		cfg.Retry.Multiplier,
		time.Duration(cfg.Retry.MaxDelaySeconds*float64(time.Second)),
	)

	transcriber := transcribe.NewOrchestrator(
		transcriptionSvc,
		media.NewFFmpeg(cfg.Media.FFmpegBinary),
		transcribe.OrchestratorConfig{
			Workers:         cfg.Transcription.Workers,
			TimeoutPerChunk: time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
			Language:        cfg.Transcription.Language,
			TrimStrategy:    cfg.Transcription.TrimStrategy,
			Retry:           retryPolicy,
		},
		logger,
	)

	chatSvc, err := synthesize.NewChatService(synthesize.ChatConfig{
		BaseURL:        cfg.Synthesis.BaseURL,
		APIKey:         cfg.Synthesis.APIKey,
		Model:          cfg.Synthesis.Model,
		TimeoutSeconds: cfg.Synthesis.TimeoutSeconds,
	}, synthesize.WithRetryMaxAttempts(cfg.Synthesis.MaxRetries))
	if err != nil {
		return nil, err
	}

	synthesizer := synthesize.NewOrchestrator(chatSvc, synthesize.OrchestratorConfig{
		Template:     cfg.Synthesis.Template,
		TargetLength: cfg.Synthesis.TargetLength,
		BudgetChars:  cfg.Synthesis.BudgetChars,
		Workers:      cfg.Synthesis.Workers,
	}, logger)

	controller := pipeline.NewController(
		media.NewFFprobe(cfg.Media.FFprobeBinary),
		transcriber,
		synthesizer,
		store,
		pipeline.Config{
			Chunking: chunker.Config{
				MaxChunkSeconds: cfg.Chunking.MaxChunkSeconds,
				OverlapSeconds:  cfg.Chunking.OverlapSeconds,
				MinChunkSeconds: cfg.Chunking.MinChunkSeconds,
			},
			FailureThreshold: cfg.Pipeline.FailureThreshold,
			Template:         cfg.Synthesis.Template,
			StagingDir:       ws.Root(),
		},
		logger,
	)
	return controller, nil
}
