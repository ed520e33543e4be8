package transcribe

import (
	"fmt"
	"strings"
	"unicode"

	"distill/internal/chunker"
)

// Overlap trim strategies.
const (
	TrimProportional = "proportional"
	TrimNone         = "none"
)

// Placeholder inserted into the merged transcript where a chunk could not
// be transcribed, so listeners know material is missing and where.
func placeholder(index int) string {
	return fmt.Sprintf("[transcription unavailable for segment %d]", index)
}

// trimOverlap removes the approximate lead-in text that repeats the tail of
// the previous chunk. The proportional strategy assumes speech density is
// roughly uniform across the chunk and cuts a rune prefix sized by the
// overlap's share of the chunk duration, then skips forward to the next word
// boundary so no word is cut in half.
func trimOverlap(text string, chunk chunker.Chunk, strategy string) string {
	if strategy != TrimProportional {
		return text
	}
	duration := chunk.DurationSeconds()
	if chunk.OverlapSeconds <= 0 || duration <= 0 {
		return text
	}
	runes := []rune(text)
	cut := int(float64(len(runes)) * chunk.OverlapSeconds / duration)
	if cut <= 0 {
		return text
	}
	if cut >= len(runes) {
		return ""
	}
	for cut < len(runes) && !unicode.IsSpace(runes[cut]) {
		cut++
	}
	return strings.TrimSpace(string(runes[cut:]))
}

// joinPieces concatenates per-chunk texts into one transcript. Pieces are
// separated by a single space; a piece whose predecessor ends in a hyphen
// is joined directly, since the recognizer split a hyphenated word.
func joinPieces(pieces []string) string {
	var b strings.Builder
	prevHyphen := false
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if b.Len() > 0 && !prevHyphen {
			b.WriteByte(' ')
		}
		b.WriteString(piece)
		prevHyphen = strings.HasSuffix(piece, "-")
	}
	return b.String()
}

// assemble merges per-chunk outcomes into the final transcript, in chunk
// order regardless of completion order. Failed chunks contribute a
// placeholder; successful chunks after the first have their overlap lead
// trimmed per the configured strategy.
func assemble(chunks []chunker.Chunk, outcomes []chunkOutcome, strategy string) string {
	pieces := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if outcomes[i].err != nil {
			pieces = append(pieces, placeholder(chunk.Index))
			continue
		}
		pieces = append(pieces, trimOverlap(outcomes[i].text, chunk, strategy))
	}
	return joinPieces(pieces)
}
