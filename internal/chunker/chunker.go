// Package chunker splits normalized document text into overlapping fragments
// sized for embedding-model context limits.
package chunker

import "strings"

const (
	// DefaultMaxChars is the maximum fragment length in characters.
	DefaultMaxChars = 800

	// DefaultOverlap is the number of characters shared between consecutive
	// fragments, so that a sentence straddling a boundary is fully present
	// in at least one fragment.
	DefaultOverlap = 100
)

// separators are the preferred break points, in descending priority order.
// A fragment ends at the last occurrence of the highest-priority separator
// inside its window; only when none occurs does it fall back to a hard cut.
var separators = []string{"\n", ". ", "? ", "! ", "- "}

// Fragment is a contiguous slice of the source text.
type Fragment struct {
	Index int    // position in the fragment sequence (0, 1, 2...)
	Start int    // character offset into the source text
	Text  string
}

// Chunker produces overlapping fragments from normalized text.
type Chunker struct {
	maxChars int
	overlap  int
}

// New creates a Chunker. Non-positive maxChars or overlap fall back to the
// defaults; overlap is clamped below maxChars so every step makes progress.
func New(maxChars, overlap int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxChars {
		overlap = maxChars / 2
	}
	return &Chunker{maxChars: maxChars, overlap: overlap}
}

// Split divides text into fragments of at most maxChars characters with
// overlap characters shared between neighbors. Every character of the input
// appears in at least one fragment. Text that fits in a single fragment is
// returned whole, with no overlap. Empty text yields no fragments.
func (c *Chunker) Split(text string) []Fragment {
	if text == "" {
		return nil
	}
	if len(text) <= c.maxChars {
		return []Fragment{{Index: 0, Start: 0, Text: text}}
	}

	var fragments []Fragment
	start := 0
	for start < len(text) {
		end := start + c.maxChars
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}

		fragments = append(fragments, Fragment{
			Index: len(fragments),
			Start: start,
			Text:  text[start:end],
		})

		if end == len(text) {
			break
		}

		next := end - c.overlap
		if next <= start {
			next = start + 1 // degenerate window, force progress
		}
		start = next
	}

	return fragments
}

// breakPoint returns the cut position for a fragment starting at start whose
// window extends to limit. Separators are tried in priority order; the cut
// lands just after the separator. Position start itself is never a valid cut.
func (c *Chunker) breakPoint(text string, start, limit int) int {
	window := text[start:limit]
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + i + len(sep)
		}
	}
	return limit
}
