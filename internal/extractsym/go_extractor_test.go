package extractsym

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktnyt/fae-sub001/internal/message"
)

const sampleGoSource = `package sample

const MaxRetries = 3

var defaultName = "fae"

type Widget struct {
	Name string
}

type Greeter interface {
	Greet() string
}

func compute_score() int {
	return 1
}

func (w Widget) Greet() string {
	return w.Name
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(sampleGoSource), 0o644))
	return path
}

func TestGoExtractorFindsTopLevelSymbols(t *testing.T) {
	ex, err := NewGoExtractor()
	require.NoError(t, err)
	defer ex.Close()

	path := writeSample(t)
	records, err := ex.Extract(path)
	require.NoError(t, err)
	require.Len(t, records, 6, "each declaration must yield exactly one record, not a struct/interface plus a duplicate SymbolClass")

	byName := make(map[string]message.SymbolRecord)
	for _, r := range records {
		byName[r.Name] = r
	}

	require.Contains(t, byName, "compute_score")
	assert.Equal(t, message.SymbolFunction, byName["compute_score"].SymbolType)

	require.Contains(t, byName, "Widget")
	assert.Equal(t, message.SymbolStruct, byName["Widget"].SymbolType)

	require.Contains(t, byName, "Greeter")
	assert.Equal(t, message.SymbolInterface, byName["Greeter"].SymbolType)

	require.Contains(t, byName, "MaxRetries")
	assert.Equal(t, message.SymbolConstant, byName["MaxRetries"].SymbolType)
	assert.True(t, byName["MaxRetries"].SymbolType.IsVariableFamily())

	require.Contains(t, byName, "defaultName")
	assert.Equal(t, message.SymbolVariable, byName["defaultName"].SymbolType)

	require.Contains(t, byName, "Greet")
	assert.Equal(t, message.SymbolMethod, byName["Greet"].SymbolType)
	assert.Equal(t, path, byName["Greet"].Filepath)
	assert.NotZero(t, byName["Greet"].Line)
}

func TestGoExtractorReportsReadError(t *testing.T) {
	ex, err := NewGoExtractor()
	require.NoError(t, err)
	defer ex.Close()

	_, err = ex.Extract(filepath.Join(t.TempDir(), "missing.go"))
	assert.Error(t, err)
}
