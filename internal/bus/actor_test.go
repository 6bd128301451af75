package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ktnyt/fae-sub001/internal/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestActorProcessesMessagesSequentially(t *testing.T) {
	out := make(chan message.Message, 16)
	var mu sync.Mutex
	var order []string

	handler := HandlerFunc(func(msg message.Message, ctl *Controller) error {
		mu.Lock()
		order = append(order, string(msg.Method))
		mu.Unlock()
		return ctl.Send(message.NewCompleteSearch())
	})

	a := NewActor("test", 8, out, handler, nil)
	defer a.Shutdown()

	a.Inbox() <- message.NewUpdateSearchParams("a", message.ModeLiteral)
	a.Inbox() <- message.NewClearResults()

	for i := 0; i < 2; i++ {
		select {
		case msg := <-out:
			assert.Equal(t, message.MethodCompleteSearch, msg.Method)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for echoed message")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
	assert.Equal(t, string(message.MethodUpdateSearchParams), order[0])
	assert.Equal(t, string(message.MethodClearResults), order[1])
}

func TestActorShutdownIsIdempotent(t *testing.T) {
	out := make(chan message.Message, 1)
	a := NewActor("test", 1, out, HandlerFunc(func(message.Message, *Controller) error { return nil }), nil)

	a.Shutdown()
	a.Shutdown() // must not panic or block
}

func TestActorHandlerErrorDoesNotStopLoop(t *testing.T) {
	out := make(chan message.Message, 4)
	calls := 0
	var mu sync.Mutex

	handler := HandlerFunc(func(msg message.Message, ctl *Controller) error {
		mu.Lock()
		calls++
		mu.Unlock()
		if msg.Method == message.MethodClearResults {
			return assert.AnError
		}
		return ctl.Send(message.NewCompleteSearch())
	})

	a := NewActor("test", 4, out, handler, nil)
	defer a.Shutdown()

	a.Inbox() <- message.NewClearResults()
	a.Inbox() <- message.NewInitialize()

	select {
	case msg := <-out:
		assert.Equal(t, message.MethodCompleteSearch, msg.Method)
	case <-time.After(time.Second):
		t.Fatal("actor loop stopped after handler error")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestControllerSendToClosedOutboxReturnsError(t *testing.T) {
	out := make(chan message.Message)
	close(out)
	ctl := &Controller{outbox: out}

	err := ctl.Send(message.NewCompleteSearch())
	assert.ErrorIs(t, err, ErrChannelClosed)
}
