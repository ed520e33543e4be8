package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if !strings.Contains(string(data), "[transcription]") {
		t.Fatalf("sample config missing transcription section:\n%s", data)
	}
	if !strings.Contains(out.String(), target) {
		t.Fatalf("output does not mention target path: %s", out.String())
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cmd := newConfigInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without --overwrite")
	}

	cmd = newConfigInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--path", target, "--overwrite"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init --overwrite returned error: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) == "existing" {
		t.Fatal("config was not overwritten")
	}
}

func TestTemplatesCommandListsAll(t *testing.T) {
	cmd := newTemplatesCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("templates returned error: %v", err)
	}
	for _, name := range []string{"basic_summary", "meeting_minutes", "study_notes"} {
		if !strings.Contains(out.String(), name) {
			t.Fatalf("templates output missing %s:\n%s", name, out.String())
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	rendered := renderTable(
		[]string{"A", "B"},
		[][]string{{"only-a"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	if !strings.Contains(rendered, "only-a") {
		t.Fatalf("missing cell in rendered table:\n%s", rendered)
	}
}

func TestColorStatus(t *testing.T) {
	if got := colorStatus("completed", false); got != "completed" {
		t.Fatalf("colorize disabled should pass through, got %q", got)
	}
	if got := colorStatus("failed", true); !strings.Contains(got, ansiRed) {
		t.Fatalf("failed status not colored red: %q", got)
	}
	if got := colorStatus("transcribing", true); !strings.Contains(got, ansiYellow) {
		t.Fatalf("in-progress status not colored yellow: %q", got)
	}
}

func TestFormatOffset(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{570, "9:30"},
		{1500, "25:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{1199.6, "20:00"},
	}
	for _, tc := range cases {
		if got := formatOffset(tc.seconds); got != tc.want {
			t.Fatalf("formatOffset(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
