package edgar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("AAPL", "AAPL"))
	assert.Equal(t, 1, levenshtein("AAPL", "AAPLL"))
	assert.Equal(t, 1, levenshtein("MSFT", "MSF"))
	assert.Equal(t, 4, levenshtein("", "AAPL"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("AAPL", "AAPL"), 0.001)
	assert.InDelta(t, 0.8, similarity("AAPL", "AAPLL"), 0.001)
	assert.InDelta(t, 0.0, similarity("AB", "XY"), 0.001)
	assert.InDelta(t, 1.0, similarity("", ""), 0.001)
}

func TestCloseMatches(t *testing.T) {
	candidates := []string{"AAPL", "MSFT", "TSLA", "AAPLW", "AAL"}

	got := closeMatches("AAPLL", candidates, 5)
	assert.Contains(t, got, "AAPL")
	assert.NotContains(t, got, "MSFT")
}

func TestCloseMatches_ExactExcluded(t *testing.T) {
	got := closeMatches("AAPL", []string{"AAPL", "AAPLW"}, 5)
	assert.NotContains(t, got, "AAPL")
	assert.Contains(t, got, "AAPLW")
}

func TestCloseMatches_Limit(t *testing.T) {
	candidates := []string{"ABCA", "ABCB", "ABCC", "ABCD", "ABCE", "ABCF"}
	got := closeMatches("ABCX", candidates, 3)
	assert.Len(t, got, 3)
}

func TestCloseMatches_BestFirstThenAlpha(t *testing.T) {
	// All candidates score the same distance from the target, so ordering
	// falls back to alphabetical.
	got := closeMatches("ABCX", []string{"ABCC", "ABCA", "ABCB"}, 5)
	assert.Equal(t, []string{"ABCA", "ABCB", "ABCC"}, got)
}

func TestCloseMatches_NoneAboveCutoff(t *testing.T) {
	got := closeMatches("ZZZZ", []string{"AAPL", "MSFT"}, 5)
	assert.Empty(t, got)
}
