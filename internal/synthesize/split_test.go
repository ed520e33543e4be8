package synthesize

import (
	"strings"
	"testing"
)

func TestSplitByBudgetShortText(t *testing.T) {
	pieces := splitByBudget("short transcript", 100)
	if len(pieces) != 1 || pieces[0] != "short transcript" {
		t.Fatalf("unexpected pieces: %v", pieces)
	}
}

func TestSplitByBudgetEmpty(t *testing.T) {
	if pieces := splitByBudget("   ", 100); pieces != nil {
		t.Fatalf("expected nil for blank input, got %v", pieces)
	}
}

func TestSplitByBudgetPrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("alpha ", 12)
	para2 := strings.Repeat("beta ", 12)
	text := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2)
	pieces := splitByBudget(text, 100)
	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %v", len(pieces), pieces)
	}
	if strings.Contains(pieces[0], "beta") || strings.Contains(pieces[1], "alpha") {
		t.Fatalf("split did not honor paragraph break: %v", pieces)
	}
}

func TestSplitByBudgetFallsBackToSentences(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("This is a sentence. ", 20))
	pieces := splitByBudget(text, 100)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i, piece := range pieces {
		if len([]rune(piece)) > 100 {
			t.Fatalf("piece %d over budget: %d runes", i, len([]rune(piece)))
		}
		if i < len(pieces)-1 && !strings.HasSuffix(piece, ".") {
			t.Fatalf("piece %d does not end at a sentence: %q", i, piece)
		}
	}
}

func TestSplitByBudgetWordBoundaryFallback(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 200))
	pieces := splitByBudget(text, 100)
	for i, piece := range pieces {
		if len([]rune(piece)) > 100 {
			t.Fatalf("piece %d over budget: %d runes", i, len([]rune(piece)))
		}
		if strings.HasPrefix(piece, "ord") || strings.HasSuffix(piece, "wor") {
			t.Fatalf("piece %d cut mid-word: %q", i, piece)
		}
	}
}

func TestSplitByBudgetUnbrokenText(t *testing.T) {
	text := strings.Repeat("x", 250)
	pieces := splitByBudget(text, 100)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(pieces))
	}
	for i, piece := range pieces {
		if len(piece) > 100 {
			t.Fatalf("piece %d over budget: %d", i, len(piece))
		}
	}
}

func TestSplitByBudgetRoundTripCoverage(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("All spoken words must survive the split. ", 50))
	pieces := splitByBudget(text, 120)
	joined := strings.Join(pieces, " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(text), " ") {
		t.Fatal("split lost or reordered words")
	}
}
