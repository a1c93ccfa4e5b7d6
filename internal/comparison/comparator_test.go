package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComparatorSymmetry(t *testing.T) {
	cmp := NewComparator(DefaultMatchThreshold)

	pairs := [][2]string{
		{"", ""},
		{"", "jane doe"},
		{"jane doe", "jane d0e"},
		{"pa9876543", "pa9876548"},
		{"completely", "different"},
		{"1990-05-15", "1990-05-15"},
	}
	for _, p := range pairs {
		assert.Equal(t, cmp.Match(p[0], p[1]), cmp.Match(p[1], p[0]),
			"compare(%q,%q) must equal compare(%q,%q)", p[0], p[1], p[1], p[0])
	}
}

func TestComparatorEmptyHandling(t *testing.T) {
	cmp := NewComparator(DefaultMatchThreshold)

	assert.True(t, cmp.Match("", ""), "empty-vs-empty is a match")
	assert.False(t, cmp.Match("", "jane doe"), "empty-vs-nonempty is a mismatch")
	assert.False(t, cmp.Match("jane doe", ""))
}

func TestComparatorNoiseTolerance(t *testing.T) {
	cmp := NewComparator(DefaultMatchThreshold)

	t.Run("single OCR misread within threshold matches", func(t *testing.T) {
		// 'O' read as '0': 1 edit over 8 runes, similarity 0.875
		assert.True(t, cmp.Match("jane doe", "jane d0e"))
	})

	t.Run("divergent values do not match", func(t *testing.T) {
		assert.False(t, cmp.Match("jane doe", "john smith"))
	})

	t.Run("identifier differing in most digits does not match", func(t *testing.T) {
		assert.False(t, cmp.Match("id123456789", "id987654321"))
	})

	t.Run("exact equality always matches", func(t *testing.T) {
		assert.True(t, cmp.Match("x", "x"))
	})
}

func TestComparatorThresholdIsConfigurable(t *testing.T) {
	strict := NewComparator(0.99)
	lenient := NewComparator(0.5)

	a, b := "jane doe", "jane d0e"
	assert.False(t, strict.Match(a, b))
	assert.True(t, lenient.Match(a, b))
}

func TestNewComparatorClampsInvalidThreshold(t *testing.T) {
	cmp := NewComparator(-1)
	assert.InDelta(t, DefaultMatchThreshold, cmp.threshold, 1e-9)

	cmp = NewComparator(1.5)
	assert.InDelta(t, DefaultMatchThreshold, cmp.threshold, 1e-9)
}

func TestSimilarityBounds(t *testing.T) {
	cmp := NewComparator(DefaultMatchThreshold)

	assert.InDelta(t, 1.0, cmp.Similarity("same", "same"), 1e-9)
	assert.InDelta(t, 0.0, cmp.Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.875, cmp.Similarity("jane doe", "jane d0e"), 1e-9)
}
