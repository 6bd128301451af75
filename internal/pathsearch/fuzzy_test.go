package pathsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePathRequiresSubsequence(t *testing.T) {
	_, ok := scorePath("xyz", "internal/bus/actor.go")
	assert.False(t, ok)
}

func TestScorePathRanksBasenamePrefixHighest(t *testing.T) {
	prefixScore, ok := scorePath("actor", "internal/bus/actor.go")
	require.True(t, ok)

	scatteredScore, ok := scorePath("actor", "internal/actorish/other.go")
	require.True(t, ok)

	assert.Greater(t, prefixScore, scatteredScore)
}

func TestScorePathEmptyPatternMatchesEverythingWithZeroScore(t *testing.T) {
	score, ok := scorePath("", "anything/at/all.go")
	require.True(t, ok)
	assert.Equal(t, 0.0, score)
}
