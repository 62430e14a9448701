// Package chunker splits document text into overlapping, size-bounded
// segments suitable for embedding. Splitting cascades through a separator
// priority list (paragraph, line, sentence, word, character) so chunk
// boundaries land on the most semantic break available.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultSize is the nominal chunk size in runes.
const DefaultSize = 500

// DefaultOverlap is the trailing context carried between adjacent chunks.
const DefaultOverlap = 80

// DefaultSeparators is the cascade order: paragraph, line, sentence, word,
// character. The empty string splits into individual runes and guarantees
// the cascade always terminates.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", " ", ""}
}

// Config holds splitter parameters.
type Config struct {
	Size       int
	Overlap    int
	Separators []string
}

// Splitter is a recursive character text splitter. The zero-cost construction
// makes it safe to share across goroutines; Split is a pure function of its
// input.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// New creates a splitter, filling zero config fields with defaults.
func New(cfg Config) *Splitter {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 2
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSeparators()
	}
	return &Splitter{size: cfg.Size, overlap: cfg.Overlap, separators: cfg.Separators}
}

// Split divides text into chunks of at most Size runes with Overlap runes of
// trailing context repeated between consecutive chunks. A fragment that no
// separator can divide is emitted whole even when it exceeds Size; truncation
// would silently lose data. Identical input always yields identical output.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep, rest := pickSeparator(text, separators)
	pieces := splitOn(text, sep)

	var chunks []string
	var pending []string

	flush := func() {
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, sep)...)
			pending = nil
		}
	}

	for _, piece := range pieces {
		if runeLen(piece) <= s.size {
			pending = append(pending, piece)
			continue
		}
		flush()
		if len(rest) == 0 {
			// Indivisible oversized fragment: emit as-is.
			chunks = append(chunks, piece)
			continue
		}
		chunks = append(chunks, s.split(piece, rest)...)
	}
	flush()

	return chunks
}

// merge joins adjacent undersized pieces to approach Size, carrying up to
// Overlap runes of the previous chunk into the next.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		pieceLen := runeLen(piece)

		if len(window) > 0 && total+sepLen+pieceLen > s.size {
			chunks = appendChunk(chunks, window, sep)

			// Shrink the window to the overlap budget before starting
			// the next chunk.
			for len(window) > 0 &&
				(total > s.overlap || total+sepLen+pieceLen > s.size) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}

		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, piece)
		total += pieceLen
	}

	return appendChunk(chunks, window, sep)
}

func appendChunk(chunks []string, window []string, sep string) []string {
	chunk := strings.Join(window, sep)
	if strings.TrimSpace(chunk) == "" {
		return chunks
	}
	return append(chunks, chunk)
}

// pickSeparator returns the first separator present in text and the cascade
// remainder past it. The empty separator always matches.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

func splitOn(text, sep string) []string {
	if sep == "" {
		return strings.Split(text, "")
	}
	return strings.Split(text, sep)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
