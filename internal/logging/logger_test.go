package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"distill/internal/services"
)

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger = NewComponentLogger(logger, "chunker")
	logger.Info("planned chunks", Int("chunks", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO chunker: planned chunks") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "chunks=3") {
		t.Fatalf("missing attribute in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("probe", String("path", "my file.mp3"))
	if !strings.Contains(buf.String(), `path="my file.mp3"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("info record should be filtered, got %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "WARN kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	ctx := services.WithJobID(context.Background(), "job-42")
	ctx = services.WithStage(ctx, "transcribing")
	ctx = services.WithChunkIndex(ctx, 7)

	WithContext(ctx, logger).Info("chunk done")
	line := buf.String()
	for _, want := range []string{"job_id=job-42", "stage=transcribing", "chunk=7"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in line %q", want, line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug level mismatch")
	}
	if parseLevel("") != slog.LevelInfo {
		t.Fatal("empty level should default to info")
	}
	if parseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unknown level should default to info")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
