package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"distill/internal/pipeline"
	"distill/internal/testsupport"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newJob(id string) *pipeline.Job {
	return &pipeline.Job{
		ID:         id,
		SourcePath: "/media/" + id + ".mp3",
		Status:     pipeline.StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestCreateAndGetJob(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateJob(ctx, newJob("job-a")); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	record, err := store.GetJob(ctx, "job-a")
	if err != nil {
		t.Fatalf("GetJob returned error: %v", err)
	}
	if record.SourcePath != "/media/job-a.mp3" {
		t.Fatalf("unexpected source path: %s", record.SourcePath)
	}
	if record.Status != pipeline.StatusQueued {
		t.Fatalf("unexpected status: %s", record.Status)
	}
	if record.CreatedAt.IsZero() {
		t.Fatal("created_at not persisted")
	}
}

func TestGetJobNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetJob(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.CreateJob(ctx, newJob("job-b")); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	if err := store.UpdateStatus(ctx, "job-b", pipeline.StatusFailed, "every chunk failed"); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	record, err := store.GetJob(ctx, "job-b")
	if err != nil {
		t.Fatalf("GetJob returned error: %v", err)
	}
	if record.Status != pipeline.StatusFailed || record.ErrorMessage != "every chunk failed" {
		t.Fatalf("unexpected record: %+v", record)
	}

	if err := store.UpdateStatus(ctx, "missing", pipeline.StatusChunking, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveReport(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.CreateJob(ctx, newJob("job-c")); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if err := store.SaveReport(ctx, "job-c", []byte(`{"result":"succeeded"}`)); err != nil {
		t.Fatalf("SaveReport returned error: %v", err)
	}
	record, err := store.GetJob(ctx, "job-c")
	if err != nil {
		t.Fatalf("GetJob returned error: %v", err)
	}
	if record.ReportJSON != `{"result":"succeeded"}` {
		t.Fatalf("unexpected report: %s", record.ReportJSON)
	}
}

func TestListJobsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		job := newJob(id)
		job.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := store.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob(%s) returned error: %v", id, err)
		}
	}

	records, err := store.ListJobs(ctx, 0)
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(records))
	}
	if records[0].ID != "new" || records[2].ID != "old" {
		t.Fatalf("unexpected order: %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}

	limited, err := store.ListJobs(ctx, 1)
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"x", "y"} {
		if err := store.CreateJob(ctx, newJob(id)); err != nil {
			t.Fatalf("CreateJob returned error: %v", err)
		}
	}
	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	records, err := store.ListJobs(ctx, 0)
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(records))
	}
}

func TestOpenUsesConfiguredDataDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()
	if filepath.Dir(store.Path()) != cfg.Paths.DataDir {
		t.Fatalf("store not under data dir: %s", store.Path())
	}
}

func TestOpenPathReusesExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	if err := store.CreateJob(context.Background(), newJob("persisted")); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetJob(context.Background(), "persisted"); err != nil {
		t.Fatalf("job lost across reopen: %v", err)
	}
}
