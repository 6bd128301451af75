package symbolindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktnyt/fae-sub001/internal/message"
)

func TestStoreClearRemovesAllRecordsForPath(t *testing.T) {
	s := NewStore()
	s.Push(message.SymbolRecord{Filepath: "a.go", Name: "Foo", Line: 1})
	s.Push(message.SymbolRecord{Filepath: "a.go", Name: "Bar", Line: 2})
	s.Push(message.SymbolRecord{Filepath: "b.go", Name: "Baz", Line: 1})

	require.Len(t, s.Records("a.go"), 2)

	s.Clear("a.go")
	assert.Empty(t, s.Records("a.go"))
	assert.Len(t, s.Records("b.go"), 1)
}

func TestStoreFuzzyQueryRanksContiguousAndPrefixHigher(t *testing.T) {
	s := NewStore()
	s.Push(message.SymbolRecord{Filepath: "x.go", Name: "compute_score", Line: 1, SymbolType: message.SymbolFunction})
	s.Push(message.SymbolRecord{Filepath: "y.go", Name: "complete_search", Line: 1, SymbolType: message.SymbolFunction})
	s.Push(message.SymbolRecord{Filepath: "z.go", Name: "unrelated", Line: 1, SymbolType: message.SymbolFunction})

	results := s.FuzzyQuery("cs", 100, nil)
	require.GreaterOrEqual(t, len(results), 2)
	for _, r := range results {
		require.NotNil(t, r.Score)
	}

	var scoreCompute, scoreComplete float64
	var foundCompute, foundComplete bool
	for _, r := range results {
		switch r.Filename {
		case "x.go":
			scoreCompute, foundCompute = *r.Score, true
		case "y.go":
			scoreComplete, foundComplete = *r.Score, true
		}
	}
	require.True(t, foundCompute)
	require.True(t, foundComplete)
	assert.GreaterOrEqual(t, scoreCompute, scoreComplete, "compute_score's contiguous 'c'+'s' initials should score at least as high")

	for _, r := range results {
		assert.NotEqual(t, "z.go", r.Filename, "unrelated must not match pattern cs as a subsequence-free name")
	}
}

func TestStoreFuzzyQueryAppliesFilter(t *testing.T) {
	s := NewStore()
	s.Push(message.SymbolRecord{Filepath: "x.go", Name: "counter", Line: 1, SymbolType: message.SymbolVariable})
	s.Push(message.SymbolRecord{Filepath: "x.go", Name: "counter_func", Line: 2, SymbolType: message.SymbolFunction})

	results := s.FuzzyQuery("counter", 100, message.SymbolType.IsVariableFamily)
	require.Len(t, results, 1)
	assert.Equal(t, uint32(1), results[0].Line)
}

func TestStoreFuzzyQueryRespectsLimit(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		s.Push(message.SymbolRecord{Filepath: "x.go", Name: "foo", Line: uint32(i + 1), SymbolType: message.SymbolFunction})
	}
	results := s.FuzzyQuery("foo", 3, nil)
	assert.Len(t, results, 3)
}
