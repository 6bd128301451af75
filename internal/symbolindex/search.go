package symbolindex

import (
	"sync"

	"github.com/ktnyt/fae-sub001/internal/bus"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

const defaultSymbolQueryLimit = 100

// SearchActor services Symbol/Variable-mode queries against a Store
// (spec.md §4.3). Its handler never blocks the actor's sequential dispatch
// loop on a long-running query: it bumps a generation counter and hands the
// actual streaming off to a goroutine that checks the generation before
// every send, so a later UpdateSearchParams can supersede an in-flight one
// exactly as spec.md §5 requires ("a new query is cancelled before the new
// one begins") without needing its own cancellation-token plumbing.
type SearchActor struct {
	store *Store
	limit int
	actor *bus.Actor

	mu         sync.Mutex
	generation uint64
}

// NewSearchActor creates and starts a SearchActor.
func NewSearchActor(store *Store, outbox chan<- message.Message, log *debug.Logger) *SearchActor {
	if log == nil {
		log = debug.New("[symbolsearch] ", false)
	}
	a := &SearchActor{store: store, limit: defaultSymbolQueryLimit}
	a.actor = bus.NewActor("symbol-search", 64, outbox, bus.HandlerFunc(a.onMessage), log)
	return a
}

// Inbox is where UpdateSearchParams messages are delivered.
func (a *SearchActor) Inbox() chan<- message.Message { return a.actor.Inbox() }

// Shutdown stops the actor.
func (a *SearchActor) Shutdown() { a.actor.Shutdown() }

func (a *SearchActor) onMessage(msg message.Message, ctl *bus.Controller) error {
	if msg.Method != message.MethodUpdateSearchParams || msg.Payload.SearchParams == nil {
		return nil
	}
	params := *msg.Payload.SearchParams
	if !params.Mode.IsSymbolFamily() {
		return nil // no-op collaborator for non-symbol modes, per spec.md §4.3
	}

	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	go a.runQuery(gen, params, ctl)
	return nil
}

func (a *SearchActor) runQuery(gen uint64, params message.SearchParams, ctl *bus.Controller) {
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

	var filter func(message.SymbolType) bool
	if params.Mode == message.ModeVariable {
		filter = message.SymbolType.IsVariableFamily
	}

	for _, r := range a.store.FuzzyQuery(params.Query, a.limit, filter) {
		if !a.stillCurrent(gen) {
			return
		}
		if err := ctl.Send(message.NewPushSearchResult(r)); err != nil {
			return
		}
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
