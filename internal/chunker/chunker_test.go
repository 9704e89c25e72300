package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextSingleFragment(t *testing.T) {
	c := New(800, 100)

	text := "A short paragraph that easily fits in one fragment."
	fragments := c.Split(text)

	require.Len(t, fragments, 1)
	assert.Equal(t, 0, fragments[0].Index)
	assert.Equal(t, 0, fragments[0].Start)
	assert.Equal(t, text, fragments[0].Text)
}

func TestSplit_EmptyText(t *testing.T) {
	c := New(800, 100)
	assert.Empty(t, c.Split(""))
}

func TestSplit_ExactlyMaxChars(t *testing.T) {
	c := New(100, 20)

	text := strings.Repeat("x", 100)
	fragments := c.Split(text)

	require.Len(t, fragments, 1)
	assert.Equal(t, text, fragments[0].Text)
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	c := New(50, 10)

	text := "First sentence here. Second sentence follows after. Third one closes it out."
	fragments := c.Split(text)

	require.Greater(t, len(fragments), 1)
	// The first fragment must end just after a ". " separator, not at a hard
	// 50-character cut through a word.
	assert.True(t, strings.HasSuffix(fragments[0].Text, ". "),
		"fragment %q should end at a sentence boundary", fragments[0].Text)
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	c := New(100, 20)

	text := strings.Repeat("a", 350)
	fragments := c.Split(text)

	for _, f := range fragments {
		assert.LessOrEqual(t, len(f.Text), 100)
	}
	assertFullCoverage(t, text, fragments)
}

func TestSplit_OverlapBetweenNeighbors(t *testing.T) {
	c := New(100, 20)

	text := strings.Repeat("b", 300)
	fragments := c.Split(text)
	require.Greater(t, len(fragments), 1)

	for i := 1; i < len(fragments); i++ {
		prev := fragments[i-1]
		cur := fragments[i]
		prevEnd := prev.Start + len(prev.Text)
		assert.Equal(t, 20, prevEnd-cur.Start,
			"hard cuts should share exactly the configured overlap")
	}
}

func TestSplit_CoverageAndCountLowerBound(t *testing.T) {
	c := New(200, 40)

	texts := []string{
		strings.Repeat("Hello cafe world. ", 50),
		strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 30),
		strings.Repeat("z", 1999),
	}

	for _, text := range texts {
		fragments := c.Split(text)
		assertFullCoverage(t, text, fragments)

		// Each fragment contributes at most maxChars-overlap new characters
		// beyond the previous one's end, which bounds the count from below.
		minCount := (len(text) - 40 + (200 - 40) - 1) / (200 - 40)
		assert.GreaterOrEqual(t, len(fragments), minCount,
			"text of length %d needs at least %d fragments", len(text), minCount)

		for _, f := range fragments {
			assert.LessOrEqual(t, len(f.Text), 200)
			assert.NotEmpty(t, f.Text)
		}
	}
}

func TestSplit_IndexesAreSequential(t *testing.T) {
	c := New(120, 30)

	fragments := c.Split(strings.Repeat("Some sentence content here. ", 40))
	for i, f := range fragments {
		assert.Equal(t, i, f.Index)
	}
}

func TestNew_ClampsDegenerateConfig(t *testing.T) {
	// Overlap >= maxChars would loop forever without clamping.
	c := New(100, 100)
	fragments := c.Split(strings.Repeat("c", 500))
	require.NotEmpty(t, fragments)
	assertFullCoverage(t, strings.Repeat("c", 500), fragments)

	// Zero values fall back to defaults.
	d := New(0, -1)
	assert.Equal(t, DefaultMaxChars, d.maxChars)
	assert.Equal(t, DefaultOverlap, d.overlap)
}

// assertFullCoverage verifies that, with overlap removed, the fragments
// reconstruct the source text losslessly.
func assertFullCoverage(t *testing.T, text string, fragments []Fragment) {
	t.Helper()

	require.NotEmpty(t, fragments)
	assert.Equal(t, 0, fragments[0].Start, "first fragment must start at the beginning")

	covered := 0 // end of contiguous covered prefix
	for _, f := range fragments {
		require.LessOrEqual(t, f.Start, covered, "gap before fragment %d", f.Index)
		if end := f.Start + len(f.Text); end > covered {
			covered = end
		}
		assert.Equal(t, text[f.Start:f.Start+len(f.Text)], f.Text)
	}
	assert.Equal(t, len(text), covered, "fragments must cover the entire text")
}
