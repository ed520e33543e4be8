package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"distill/internal/jobs"
	"distill/internal/synthesize"
	"distill/internal/testsupport"
	"distill/internal/transcribe"
	"distill/internal/workspace"
)

func TestBuildControllerUsesConfiguredEndpoints(t *testing.T) {
	whisper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected transcription path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task":"transcribe","language":"en","duration":1.5,"text":"hello from the fixture"}`))
	}))
	t.Cleanup(whisper.Close)

	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected completion path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a test summary"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(chat.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithTranscriptionURL(whisper.URL+"/v1"),
		testsupport.WithSynthesisURL(chat.URL+"/v1"),
		testsupport.WithFailureThreshold(0.5),
	)
	if cfg.Pipeline.FailureThreshold != 0.5 {
		t.Fatalf("threshold override not applied: %v", cfg.Pipeline.FailureThreshold)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()

	ws := workspace.New(cfg.Paths.StagingDir)
	if _, err := buildController(cfg, store, nil, ws); err != nil {
		t.Fatalf("buildController returned error: %v", err)
	}

	// The overridden endpoints answer through the production clients.
	transcriptionSvc, err := transcribe.NewOpenAIService(transcribe.OpenAIConfig{
		BaseURL: cfg.Transcription.BaseURL,
		APIKey:  cfg.Transcription.APIKey,
		Model:   cfg.Transcription.Model,
	})
	if err != nil {
		t.Fatalf("NewOpenAIService returned error: %v", err)
	}
	audioPath := filepath.Join(t.TempDir(), "chunk_000.mp3")
	if err := os.WriteFile(audioPath, []byte("fake audio bytes"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	result, err := transcriptionSvc.Transcribe(context.Background(), transcribe.Request{AudioPath: audioPath})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if result.Text != "hello from the fixture" {
		t.Fatalf("unexpected transcript %q", result.Text)
	}

	chatSvc, err := synthesize.NewChatService(synthesize.ChatConfig{
		BaseURL: cfg.Synthesis.BaseURL,
		APIKey:  cfg.Synthesis.APIKey,
		Model:   cfg.Synthesis.Model,
	})
	if err != nil {
		t.Fatalf("NewChatService returned error: %v", err)
	}
	content, err := chatSvc.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "a test summary" {
		t.Fatalf("unexpected completion %q", content)
	}
}
