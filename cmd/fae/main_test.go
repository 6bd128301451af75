package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktnyt/fae-sub001/internal/message"
)

func TestParseModeAcceptsEveryDocumentedMode(t *testing.T) {
	cases := map[string]message.SearchMode{
		"literal":  message.ModeLiteral,
		"regexp":   message.ModeRegexp,
		"symbol":   message.ModeSymbol,
		"variable": message.ModeVariable,
		"filepath": message.ModeFilepath,
	}
	for name, want := range cases {
		got, err := parseMode(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseModeRejectsUnknownMode(t *testing.T) {
	_, err := parseMode("fuzzy")
	assert.Error(t, err)
}

func TestEmitWritesOneJSONLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, emit(w, message.NewClearResults()))
	require.NoError(t, emit(w, message.NewCompleteSearch()))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 2)

	var decoded struct {
		Method message.Method `json:"method"`
	}
	require.NoError(t, json.Unmarshal(lines[0], &decoded))
	assert.Equal(t, message.MethodClearResults, decoded.Method)
	require.NoError(t, json.Unmarshal(lines[1], &decoded))
	assert.Equal(t, message.MethodCompleteSearch, decoded.Method)
}
