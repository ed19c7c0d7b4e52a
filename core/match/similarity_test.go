package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdentity(t *testing.T) {
	t.Run("Identical strings score exactly 1.0", func(t *testing.T) {
		for _, s := range []string{"Jane Smith", "a", "Acme Inc.", "x y z", ""} {
			assert.Equal(t, 1.0, Similarity(s, s), "Expected self-similarity of 1.0 for %q", s)
		}
	})

	t.Run("Strings with equal canonical forms score exactly 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("Acme Inc.", "ACME Corp"))
		assert.Equal(t, 1.0, Similarity("jane smith", "Jane   Smith"))
	})
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"Jane Smith", "Jane Smyth"},
		{"Acme Incorporated", "Acme Industries"},
		{"Bob Jones", "Jane Smith"},
		{"a", "ab"},
		{"", "Jane"},
	}

	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]),
			"Expected symmetric score for %q / %q", p[0], p[1])
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"Jane Smith", "Jane Smyth"},
		{"Acme", "Zenith"},
		{"a", "b"},
		{"", ""},
		{"National Victory Fund", "National Victory Committee"},
	}

	for _, p := range pairs {
		score := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0, "Expected score >= 0 for %q / %q", p[0], p[1])
		assert.LessOrEqual(t, score, 1.0, "Expected score <= 1 for %q / %q", p[0], p[1])
	}
}

func TestSimilarityEmptyStrings(t *testing.T) {
	t.Run("Empty string scores 0 against non-empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", "Jane Smith"))
		assert.Equal(t, 0.0, Similarity("Jane Smith", ""))
	})

	t.Run("Both empty after normalization score 1.0 via equality", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("...", "Inc."))
	})

	t.Run("One side empty after normalization scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("Inc.", "Jane Smith"))
	})
}

func TestSimilarityDisjointStrings(t *testing.T) {
	t.Run("Strings sharing zero characters score exactly 0.0", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	})
}

func TestSimilarityNearMatches(t *testing.T) {
	t.Run("Single character substitution scores high", func(t *testing.T) {
		score := Similarity("Jane Smith", "Jane Smyth")
		assert.Greater(t, score, 0.85, "Expected Smith/Smyth to clear the fuzzy threshold")
		assert.Less(t, score, 1.0, "Expected Smith/Smyth to stay below exact")
	})

	t.Run("Unrelated names score low", func(t *testing.T) {
		score := Similarity("Jane Smith", "Bob Jones")
		assert.Less(t, score, 0.85, "Expected unrelated names to stay below the fuzzy threshold")
	})

	t.Run("Shared prefix boosts the score", func(t *testing.T) {
		withPrefix := Similarity("Acme Industries", "Acme Industrial")
		assert.Greater(t, withPrefix, 0.9)
	})
}
