package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

// fakeBackend lets tests control exactly when/what a search emits, and
// block until cancelled, without touching the filesystem or a subprocess.
type fakeBackend struct {
	mu      sync.Mutex
	started chan struct{}
	results []message.SearchResult
	block   bool
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Search(ctx context.Context, params message.SearchParams, root string, onResult OnResult) (int, error) {
	if b.started != nil {
		select {
		case b.started <- struct{}{}:
		default:
		}
	}
	count := 0
	for _, r := range b.results {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		if !onResult(r) {
			return count, nil
		}
		count++
	}
	if b.block {
		<-ctx.Done()
		return count, ctx.Err()
	}
	return count, nil
}

func collectContent(t *testing.T, ch <-chan message.Message, timeout time.Duration, until message.Method) []message.Message {
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

func TestContentActorEmitsClearPushComplete(t *testing.T) {
	backend := &fakeBackend{results: []message.SearchResult{
		{Filename: "a.go", Line: 1, Offset: 1, Content: "hello"},
	}}
	outbox := make(chan message.Message, 16)
	a := NewSearchActor(backend, "/tmp", outbox, debug.New("[test] ", false))
	defer a.Shutdown()

	a.Inbox() <- message.NewUpdateSearchParams("hello", message.ModeLiteral)

	msgs := collectContent(t, outbox, time.Second, message.MethodCompleteSearch)
	require.Len(t, msgs, 3)
	assert.Equal(t, message.MethodClearResults, msgs[0].Method)
	assert.Equal(t, message.MethodPushSearchResult, msgs[1].Method)
	assert.Equal(t, message.MethodCompleteSearch, msgs[2].Method)
}

func TestContentActorIgnoresSymbolAndFilepathModes(t *testing.T) {
	backend := &fakeBackend{}
	outbox := make(chan message.Message, 16)
	a := NewSearchActor(backend, "/tmp", outbox, debug.New("[test] ", false))
	defer a.Shutdown()

	a.Inbox() <- message.NewUpdateSearchParams("x", message.ModeSymbol)

	select {
	case msg := <-outbox:
		t.Fatalf("expected no messages for symbol mode, got %v", msg)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestContentActorEmptyQueryClearsAndCompletes(t *testing.T) {
	backend := &fakeBackend{}
	outbox := make(chan message.Message, 16)
	a := NewSearchActor(backend, "/tmp", outbox, debug.New("[test] ", false))
	defer a.Shutdown()

	a.Inbox() <- message.NewUpdateSearchParams("", message.ModeLiteral)

	msgs := collectContent(t, outbox, time.Second, message.MethodCompleteSearch)
	require.Len(t, msgs, 2)
	assert.Equal(t, message.MethodClearResults, msgs[0].Method)
	assert.Equal(t, message.MethodCompleteSearch, msgs[1].Method)
}

func TestContentActorSecondQueryCancelsFirst(t *testing.T) {
	started := make(chan struct{}, 1)
	blocked := &fakeBackend{started: started, block: true}
	outbox := make(chan message.Message, 16)
	a := NewSearchActor(blocked, "/tmp", outbox, debug.New("[test] ", false))
	defer a.Shutdown()

	a.Inbox() <- message.NewUpdateSearchParams("a", message.ModeLiteral)
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first search never started")
	}

	a.Inbox() <- message.NewUpdateSearchParams("ab", message.ModeLiteral)

	msgs := collectContent(t, outbox, time.Second, message.MethodCompleteSearch)
	require.NotEmpty(t, msgs)
	// Exactly one terminal CompleteSearch should be observed for the query
	// that actually ran to completion; the cancelled first search's own
	// completion, if any, is abandoned per the generation check.
	completes := 0
	for _, m := range msgs {
		if m.Method == message.MethodCompleteSearch {
			completes++
		}
	}
	assert.LessOrEqual(t, completes, 1)
}
