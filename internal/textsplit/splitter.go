package textsplit

import (
	"strings"
)

// defaultSeparators is tried in priority order: paragraph break, line break,
// sentence end, word boundary, and finally individual characters.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text recursively: it picks the coarsest separator present
// in the text, splits on it, and re-splits any piece still larger than the
// chunk size with the finer separators. A piece that exceeds the size bound
// with no finer separator left is kept whole; completeness wins over the
// strict size guarantee.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = smallChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 8
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

func (s *Splitter) ChunkSize() int    { return s.chunkSize }
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// SplitText splits text into chunks. Whitespace-only input yields no chunks.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			remaining = nil
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitKeepingSeparator(text, separator)

	var final []string
	var goods []string
	for _, piece := range splits {
		if len(piece) < s.chunkSize {
			goods = append(goods, piece)
			continue
		}
		if len(goods) > 0 {
			final = append(final, s.merge(goods)...)
			goods = nil
		}
		if len(remaining) == 0 {
			// No finer separator available: accept the oversized piece.
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(goods) > 0 {
		final = append(final, s.merge(goods)...)
	}
	return final
}

// splitKeepingSeparator splits text on sep, attaching each separator to the
// start of the following piece so nothing is lost. An empty sep splits into
// individual characters.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		parts := make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}

	raw := strings.Split(text, sep)
	parts := make([]string, 0, len(raw))
	for i, p := range raw {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// merge packs adjacent pieces into chunks of at most chunkSize characters,
// carrying chunkOverlap characters' worth of trailing pieces into the next
// chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && total > 0 {
			flush()
			// Drop pieces from the front until the retained tail fits the
			// overlap budget and leaves room for the incoming piece.
			for total > s.chunkOverlap || (total+len(piece) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	flush()
	return chunks
}
