package summarize

import (
	"strings"
	"unicode"
)

// Splitter breaks a document into bounded, overlapping chunks so no single
// model call exceeds the input-length limit. Consecutive chunks share an
// overlap so a sentence spanning a boundary is not fully lost to either
// side. Cuts prefer whitespace near the boundary.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewSplitter applies defaults for non-positive values.
func NewSplitter(chunkSize, chunkOverlap int) Splitter {
	if chunkSize <= 0 {
		chunkSize = 3000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Split returns the ordered chunks of text. Empty input yields no chunks.
func (s Splitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= s.ChunkSize {
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := s.cutPoint(runes, start, end)
		if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - s.ChunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// cutPoint backtracks from end to the nearest whitespace, but never past
// the midpoint of the chunk; a wall of text still gets a hard cut.
func (s Splitter) cutPoint(runes []rune, start, end int) int {
	floor := start + s.ChunkSize/2
	for i := end; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
