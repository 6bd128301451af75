package pathsearch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ktnyt/fae-sub001/internal/bus"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/ignore"
	"github.com/ktnyt/fae-sub001/internal/message"
)

const defaultPathQueryLimit = 200

// scoredEntry pairs a walked entry with its skim score, kept only long
// enough to sort before formatting into a message.SearchResult.
type scoredEntry struct {
	entry
	score float64
}

// SearchActor services Filepath-mode queries (spec.md §4.5). Each query
// re-walks root fresh rather than keeping its own index: unlike symbol
// search, the filepath matcher has no incremental store to query, so a
// generation-counter supersession (same mechanism as
// internal/symbolindex.SearchActor and internal/content.SearchActor) is
// what keeps a slow walk on a large tree from blocking a newer keystroke's
// results.
type SearchActor struct {
	root    string
	matcher *ignore.Matcher
	limit   int
	actor   *bus.Actor

	mu         sync.Mutex
	generation uint64
}

// NewSearchActor creates and starts a filepath SearchActor.
func NewSearchActor(root string, matcher *ignore.Matcher, outbox chan<- message.Message, log *debug.Logger) *SearchActor {
	if log == nil {
		log = debug.New("[pathsearch] ", false)
	}
	a := &SearchActor{root: root, matcher: matcher, limit: defaultPathQueryLimit}
	a.actor = bus.NewActor("path-search", 64, outbox, bus.HandlerFunc(a.onMessage), log)
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
	if params.Mode != message.ModeFilepath {
		return nil // no-op collaborator for other modes, per spec.md §4.5
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

	results := a.score(params.Query)
	for _, r := range results {
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

// score walks root, scores every candidate against query, and returns
// results sorted by score descending (spec.md §4.5), formatted with a
// [DIR]/[FILE] marker and the numeric score carried both in Score (for
// in-process consumers) and Offset (spec.md §4.5's stable-ordering field,
// per the Open Question decision recorded in DESIGN.md).
func (a *SearchActor) score(query string) []message.SearchResult {
	entries := walkEntries(a.root, a.matcher)

	scored := make([]scoredEntry, 0, len(entries))
	for _, e := range entries {
		s, ok := scorePath(query, e.relPath)
		if !ok {
			continue
		}
		scored = append(scored, scoredEntry{entry: e, score: s})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].relPath < scored[j].relPath
	})

	if len(scored) > a.limit {
		scored = scored[:a.limit]
	}

	out := make([]message.SearchResult, 0, len(scored))
	for _, s := range scored {
		marker := "[FILE]"
		if s.isDir {
			marker = "[DIR]"
		}
		score := s.score
		out = append(out, message.SearchResult{
			Filename: s.relPath,
			Line:     1,
			Offset:   uint32(score * 1000),
			Content:  fmt.Sprintf("%s %s", marker, s.relPath),
			Score:    &score,
		})
	}
	return out
}

func (a *SearchActor) stillCurrent(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation == gen
}
