package content

import (
	"context"
	"sync"

	"github.com/ktnyt/fae-sub001/internal/bus"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

// SearchActor drives the selected Backend for Literal/Regexp queries
// (spec.md §4.4's control contract). Like symbolindex.SearchActor, it never
// blocks the bus actor's sequential dispatch on a long search: a new
// UpdateSearchParams cancels the in-flight context and bumps a generation
// counter before the previous search's goroutine can emit anything further.
type SearchActor struct {
	backend Backend
	root    string
	actor   *bus.Actor
	log     *debug.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewSearchActor creates and starts a content SearchActor.
func NewSearchActor(backend Backend, root string, outbox chan<- message.Message, log *debug.Logger) *SearchActor {
	if log == nil {
		log = debug.New("[content] ", false)
	}
	a := &SearchActor{backend: backend, root: root, log: log}
	a.actor = bus.NewActor("content-search", 64, outbox, bus.HandlerFunc(a.onMessage), log)
	return a
}

// Inbox is where UpdateSearchParams messages are delivered.
func (a *SearchActor) Inbox() chan<- message.Message { return a.actor.Inbox() }

// Shutdown stops the actor and cancels any in-flight search.
func (a *SearchActor) Shutdown() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()
	a.actor.Shutdown()
}

func (a *SearchActor) onMessage(msg message.Message, ctl *bus.Controller) error {
	if msg.Method != message.MethodUpdateSearchParams || msg.Payload.SearchParams == nil {
		return nil
	}
	params := *msg.Payload.SearchParams
	if params.Mode != message.ModeLiteral && params.Mode != message.ModeRegexp {
		return nil // no-op collaborator for other modes
	}

	ctx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel() // a second UpdateSearchParams cancels the in-flight search first
	}
	a.generation++
	gen := a.generation
	a.cancel = cancel
	a.mu.Unlock()

	go a.runQuery(ctx, gen, params, ctl)
	return nil
}

func (a *SearchActor) runQuery(ctx context.Context, gen uint64, params message.SearchParams, ctl *bus.Controller) {
	if !a.stillCurrent(gen) {
		return
	}
	if err := ctl.Send(message.NewClearResults()); err != nil {
		return
	}

	if params.Query == "" {
		_ = ctl.Send(message.NewCompleteSearch())
		return
	}

	onResult := func(r message.SearchResult) bool {
		if !a.stillCurrent(gen) {
			return false
		}
		return ctl.Send(message.NewPushSearchResult(r)) == nil
	}

	if _, err := a.backend.Search(ctx, params, a.root, onResult); err != nil {
		a.log.Warnf("content: search failed: %v", err)
	}

	if !a.stillCurrent(gen) {
		return
	}
	_ = ctl.Send(message.NewCompleteSearch())
}

func (a *SearchActor) stillCurrent(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation == gen
}
