package coordinator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("os/exec.(*Cmd).Start.func2"))
}

func collect(t *testing.T, ch <-chan message.Message, timeout time.Duration, until message.Method) []message.Message {
	t.Helper()
	var got []message.Message
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-ch:
			got = append(got, msg)
			if msg.Method == until {
				return got
			}
		case <-deadline:
			return got
		}
	}
}

func TestCoordinatorRoutesLiteralSearchThroughToResults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc Hello() {}\n"), 0o644))

	c, err := New(Options{RootPath: dir, Log: debug.New("[test] ", false)})
	require.NoError(t, err)
	defer c.Shutdown()

	c.Send(message.NewUpdateSearchParams("Hello", message.ModeLiteral))

	msgs := collect(t, c.Results(), 2*time.Second, message.MethodCompleteSearch)
	require.NotEmpty(t, msgs)
	assert.Equal(t, message.MethodClearResults, msgs[0].Method)
	assert.Equal(t, message.MethodCompleteSearch, msgs[len(msgs)-1].Method)
}

func TestCoordinatorSkipsSymbolIndexWhenModeExcludesIt(t *testing.T) {
	dir := t.TempDir()
	literal := message.ModeLiteral

	c, err := New(Options{RootPath: dir, SearchMode: &literal, Log: debug.New("[test] ", false)})
	require.NoError(t, err)
	defer c.Shutdown()

	assert.Nil(t, c.builder)
	assert.Nil(t, c.symbolSearch)
}

func TestCoordinatorInstantiatesSymbolIndexByDefault(t *testing.T) {
	dir := t.TempDir()

	c, err := New(Options{RootPath: dir, Log: debug.New("[test] ", false)})
	require.NoError(t, err)
	defer c.Shutdown()

	assert.NotNil(t, c.builder)
	assert.NotNil(t, c.symbolSearch)
}

func TestCoordinatorInitializeDrivesSymbolIndexing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc Hello() {}\n"), 0o644))

	c, err := New(Options{RootPath: dir, Log: debug.New("[test] ", false)})
	require.NoError(t, err)
	defer c.Shutdown()

	c.Initialize()

	msgs := collect(t, c.Results(), 2*time.Second, message.MethodCompleteInitialIndex)
	found := false
	for _, m := range msgs {
		if m.Method == message.MethodCompleteInitialIndex {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCoordinatorShutdownIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Options{RootPath: dir, Log: debug.New("[test] ", false)})
	require.NoError(t, err)

	c.Shutdown()
	assert.NotPanics(t, func() { c.Shutdown() })
}
