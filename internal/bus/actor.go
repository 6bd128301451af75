// Package bus implements fae's message-bus primitives: the Actor (a private
// inbox plus a handler run strictly sequentially on its own goroutine) and
// the Broadcaster (fan-out) and Merger (fan-in) primitives. This is the
// lowest-level package in fae's dependency order (spec.md §2).
package bus

import (
	"errors"
	"sync"

	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

// ErrChannelClosed is returned by Controller.Send when the outbox has
// already been closed. Producers must log and continue; they must never
// panic (spec.md §4.1).
var ErrChannelClosed = errors.New("bus: channel closed")

// Handler processes messages delivered to an Actor's inbox, sequentially,
// one at a time. A handler error is logged by the Actor and does not stop
// its loop.
type Handler interface {
	OnMessage(msg message.Message, ctl *Controller) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(msg message.Message, ctl *Controller) error

// OnMessage implements Handler.
func (f HandlerFunc) OnMessage(msg message.Message, ctl *Controller) error { return f(msg, ctl) }

// Controller is the capability an Actor's handler uses to talk back to the
// rest of the system. It never exposes the raw channel so that handlers
// cannot accidentally close it.
type Controller struct {
	outbox chan<- message.Message
	log    *debug.Logger
}

// Send delivers method/payload to the actor's outbox. A send to a closed
// channel returns ErrChannelClosed instead of panicking. The outbox is the
// channel the actor was constructed with; when it is buffered and full,
// Send blocks until the consumer makes room.
func (c *Controller) Send(msg message.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()
	c.outbox <- msg
	return nil
}

// Actor encapsulates an inbox receiver, an outbox sender, and handler state.
// On construction it spins up one dedicated goroutine looping on
// select{shutdown, inbox.recv()}; messages are dispatched to the handler
// strictly sequentially (spec.md §4.1: "there is no intra-actor
// concurrency").
type Actor struct {
	name     string
	inbox    chan message.Message
	handler  Handler
	ctl      *Controller
	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
	log      *debug.Logger
}

// NewActor creates and starts an Actor. outbox is the shared sender the
// actor's Controller uses to emit messages (typically the bus's
// broadcaster input, or a dedicated result channel).
func NewActor(name string, inboxSize int, outbox chan<- message.Message, handler Handler, log *debug.Logger) *Actor {
	if log == nil {
		log = debug.New("[bus] ", false)
	}
	a := &Actor{
		name:     name,
		inbox:    make(chan message.Message, inboxSize),
		handler:  handler,
		ctl:      &Controller{outbox: outbox, log: log},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      log,
	}
	go a.run()
	return a
}

// Inbox returns the channel external callers/broadcasters use to deliver
// messages to this actor.
func (a *Actor) Inbox() chan<- message.Message { return a.inbox }

// Controller returns the actor's outbound controller. Most handlers only
// need the controller passed into OnMessage, but actors that emit messages
// from a background goroutine driven by something other than inbound
// traffic (e.g. a queue-draining worker) need a handle that outlives a
// single dispatch.
func (a *Actor) Controller() *Controller { return a.ctl }

func (a *Actor) run() {
	defer close(a.done)
	for {
		select {
		case <-a.shutdown:
			return
		case msg, ok := <-a.inbox:
			if !ok {
				return
			}
			if err := a.handler.OnMessage(msg, a.ctl); err != nil {
				a.log.Warnf("actor %s: handler error on %s: %v", a.name, msg.Method, err)
			}
		}
	}
}

// Shutdown signals the actor to stop and waits for its goroutine to exit.
// Idempotent: calling it more than once is a no-op after the first call.
func (a *Actor) Shutdown() {
	a.once.Do(func() {
		close(a.shutdown)
	})
	<-a.done
}
