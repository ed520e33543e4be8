package synthesize

import (
	"strings"
	"unicode"
)

// splitByBudget cuts text into pieces of at most budget runes. Cuts prefer
// a paragraph break in the back half of the window, then a sentence end,
// then a word boundary; only pathological unbroken text is cut mid-word.
func splitByBudget(text string, budget int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return []string{text}
	}

	var pieces []string
	for len(runes) > 0 {
		if len(runes) <= budget {
			piece := strings.TrimSpace(string(runes))
			if piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}
		cut := findCut(runes, budget)
		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}
	return pieces
}

func findCut(runes []rune, budget int) int {
	window := runes[:budget]
	floor := budget / 2

	if cut := lastParagraphBreak(window); cut > floor {
		return cut
	}
	if cut := lastSentenceEnd(window); cut > floor {
		return cut
	}
	if cut := lastSpace(window); cut > floor {
		return cut
	}
	return budget
}

func lastParagraphBreak(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1
		}
	}
	return -1
}

func lastSentenceEnd(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			if i+1 < len(window) && !unicode.IsSpace(window[i+1]) {
				continue
			}
			return i + 1
		}
	}
	return -1
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return -1
}
