package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	ws := New(filepath.Join(t.TempDir(), "staging"))
	if err := ws.Acquire(); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer ws.Release()

	if _, err := os.Stat(ws.Root()); err != nil {
		t.Fatalf("staging dir not created: %v", err)
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
}

func TestAcquireRejectsSecondHolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	first := New(dir)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}
	defer first.Release()

	second := New(dir)
	err := second.Acquire()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestJobDir(t *testing.T) {
	ws := New(filepath.Join(t.TempDir(), "staging"))
	if err := ws.Acquire(); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer ws.Release()

	dir, err := ws.JobDir("job-123")
	if err != nil {
		t.Fatalf("JobDir returned error: %v", err)
	}
	if filepath.Base(dir) != "job-123" {
		t.Fatalf("unexpected dir: %s", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("job dir not created: %v", err)
	}

	if _, err := ws.JobDir("../escape"); err == nil {
		t.Fatal("expected error for path traversal")
	}
	if _, err := ws.JobDir("  "); err == nil {
		t.Fatal("expected error for blank job id")
	}
}

func TestCleanJob(t *testing.T) {
	ws := New(filepath.Join(t.TempDir(), "staging"))
	if err := ws.Acquire(); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer ws.Release()

	dir, err := ws.JobDir("job-clean")
	if err != nil {
		t.Fatalf("JobDir returned error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chunk_000.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write chunk: %v", err)
	}
	if err := ws.CleanJob("job-clean"); err != nil {
		t.Fatalf("CleanJob returned error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("job dir still present: %v", err)
	}
	if err := ws.CleanJob("../escape"); err == nil {
		t.Fatal("expected error for path traversal")
	}
}
