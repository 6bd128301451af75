// Package coordinator wires every fae actor into the bus and exposes the
// single external surface spec.md §4.6 describes: inject control messages
// in, receive result messages out. Grounded on the teacher's
// internal/server.IndexServer's construction/Shutdown lifecycle shape,
// reworked from an HTTP handler registry into a bus broadcaster/merger
// topology since fae has no network surface of its own (spec.md Non-goals).
package coordinator

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ktnyt/fae-sub001/internal/bus"
	"github.com/ktnyt/fae-sub001/internal/content"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/extractsym"
	"github.com/ktnyt/fae-sub001/internal/ignore"
	"github.com/ktnyt/fae-sub001/internal/message"
	"github.com/ktnyt/fae-sub001/internal/pathsearch"
	"github.com/ktnyt/fae-sub001/internal/symbolindex"
	"github.com/ktnyt/fae-sub001/internal/watch"
)

const actorOutboxSize = 64

// Options is fae's entire configuration surface (spec.md §6): constructor
// parameters only, no environment variables, no config files.
type Options struct {
	RootPath           string
	WatchFiles         bool
	SearchMode         *message.SearchMode // nil means "no startup preference"; symbol-index actors are instantiated unless this names a non-symbol mode
	DebounceMs         int
	MaxFileSize        int64
	ExcludedExtensions []string
	Log                *debug.Logger
}

// wantsSymbolIndex implements spec.md §4.6's scope rule: symbol-index
// actors are not instantiated at all when a startup mode is declared and it
// names neither Symbol nor Variable.
func (o Options) wantsSymbolIndex() bool {
	return o.SearchMode == nil || o.SearchMode.IsSymbolFamily()
}

// Coordinator owns every actor fae wires together, the broadcaster that
// distributes inbound control messages to all of them, and the merger that
// funnels every actor's outbound events into one external channel.
type Coordinator struct {
	opts Options
	log  *debug.Logger

	broadcaster *bus.Broadcaster
	merger      *bus.Merger

	contentSearch *content.SearchActor
	pathSearch    *pathsearch.SearchActor
	builder       *symbolindex.Builder
	symbolSearch  *symbolindex.SearchActor
	watcher       *watch.Watcher

	watchStop chan struct{}
	wg        sync.WaitGroup

	shutdownOnce sync.Once
	outboxes     []chan message.Message
}

// New constructs and starts every actor Options' scope calls for, wires
// them onto the bus, and begins distributing control traffic. The returned
// Coordinator is ready for Send and already streaming results on Results().
func New(opts Options) (*Coordinator, error) {
	if opts.Log == nil {
		opts.Log = debug.New("[coordinator] ", false)
	}
	matcher := ignore.New(opts.RootPath)
	if err := matcher.Load(); err != nil {
		return nil, fmt.Errorf("coordinator: loading ignore rules: %w", err)
	}

	c := &Coordinator{
		opts:        opts,
		log:         opts.Log,
		broadcaster: bus.NewBroadcaster(actorOutboxSize),
		merger:      bus.NewMerger(256),
	}

	contentOutbox := c.newOutbox()
	backend := content.SelectBackend(content.NativeOptions{
		Ignore:             matcher,
		MaxFileSize:        opts.MaxFileSize,
		ExcludedExtensions: opts.ExcludedExtensions,
	}, opts.Log)
	c.contentSearch = content.NewSearchActor(backend, opts.RootPath, contentOutbox, opts.Log)
	c.broadcaster.Register(c.contentSearch.Inbox())

	pathOutbox := c.newOutbox()
	c.pathSearch = pathsearch.NewSearchActor(opts.RootPath, matcher, pathOutbox, opts.Log)
	c.broadcaster.Register(c.pathSearch.Inbox())

	if opts.wantsSymbolIndex() {
		extractor, err := extractsym.NewGoExtractor()
		if err != nil {
			return nil, fmt.Errorf("coordinator: creating symbol extractor: %w", err)
		}
		store := symbolindex.NewStore()

		builderOutbox := c.newOutbox()
		c.builder = symbolindex.NewBuilder(symbolindex.BuilderOptions{
			Root:      opts.RootPath,
			Ignore:    matcher,
			Extractor: extractor,
			Store:     store,
			Log:       opts.Log,
		}, builderOutbox)
		c.broadcaster.Register(c.builder.Inbox())

		symbolOutbox := c.newOutbox()
		c.symbolSearch = symbolindex.NewSearchActor(store, symbolOutbox, opts.Log)
		c.broadcaster.Register(c.symbolSearch.Inbox())
	}

	if opts.WatchFiles {
		w, err := watch.New(watch.Options{
			Root:       opts.RootPath,
			DebounceMs: opts.DebounceMs,
			Ignore:     matcher,
		}, opts.Log)
		if err != nil {
			return nil, fmt.Errorf("coordinator: creating watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return nil, fmt.Errorf("coordinator: starting watcher: %w", err)
		}
		c.watcher = w
		c.watchStop = make(chan struct{})
		c.wg.Add(1)
		go c.forwardWatchEvents()
	}

	c.merger.CloseWhenDone()
	return c, nil
}

// newOutbox allocates a per-actor channel, relays it through path
// normalization, registers the normalized stream with the merger as a
// source, and records the raw channel for Shutdown to close once its
// owning actor has stopped.
//
// Backends operate in absolute-path space internally for simplicity (the
// Open Question decision recorded in DESIGN.md); this is the one place
// both the root and the outward-facing consumer contract are known, so
// rewriting to root-relative paths happens here rather than in each
// backend.
func (c *Coordinator) newOutbox() chan message.Message {
	raw := make(chan message.Message, actorOutboxSize)
	normalized := make(chan message.Message, actorOutboxSize)
	go func() {
		defer close(normalized)
		for msg := range raw {
			normalized <- c.normalize(msg)
		}
	}()
	c.merger.AddSource(normalized)
	c.outboxes = append(c.outboxes, raw)
	return raw
}

// normalize rewrites every path-carrying field of msg from absolute to
// root-relative, leaving paths outside root (or already relative) alone.
func (c *Coordinator) normalize(msg message.Message) message.Message {
	if r := msg.Payload.SearchResult; r != nil {
		rc := *r
		rc.Filename = c.relativize(rc.Filename)
		msg.Payload.SearchResult = &rc
	}
	if msg.Payload.SymbolIndexPath != "" {
		msg.Payload.SymbolIndexPath = c.relativize(msg.Payload.SymbolIndexPath)
	}
	if sr := msg.Payload.SymbolRecord; sr != nil {
		src := *sr
		src.Filepath = c.relativize(src.Filepath)
		msg.Payload.SymbolRecord = &src
	}
	if fo := msg.Payload.FileOperation; fo != nil {
		foc := *fo
		foc.Path = c.relativize(foc.Path)
		msg.Payload.FileOperation = &foc
	}
	return msg
}

func (c *Coordinator) relativize(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(c.opts.RootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// forwardWatchEvents re-injects the watcher's DetectFile* events as inbound
// control traffic, exactly as if an external caller had sent them
// (spec.md §6: "external callers may also inject for testing").
func (c *Coordinator) forwardWatchEvents() {
	defer c.wg.Done()
	for {
		select {
		case <-c.watchStop:
			return
		case msg, ok := <-c.watcher.Events():
			if !ok {
				return
			}
			select {
			case c.broadcaster.In() <- msg:
			case <-c.watchStop:
				return
			}
		}
	}
}

// Send injects an external control message (updateSearchParams, clearResults,
// detectFileCreate/Update/Delete, initialize) into the bus.
func (c *Coordinator) Send(msg message.Message) {
	c.broadcaster.In() <- msg
}

// Initialize triggers the symbol-index pipeline's initial scan. It is a
// no-op (the message is simply ignored by every registered actor) when
// symbol indexing was never instantiated.
func (c *Coordinator) Initialize() {
	c.Send(message.NewInitialize())
}

// Results returns the single merged stream of every actor's outbound
// events: clearResults, pushSearchResult, completeSearch, pushSymbolIndex,
// clearSymbolIndex, completeSymbolIndex, reportSymbolIndex,
// completeInitialIndexing.
func (c *Coordinator) Results() <-chan message.Message {
	return c.merger.Out()
}

// Shutdown stops every actor and the watcher (if any), then closes every
// per-actor outbox so the merger's output channel closes in turn. Safe to
// call more than once.
func (c *Coordinator) Shutdown() {
	c.shutdownOnce.Do(func() {
		if c.watcher != nil {
			close(c.watchStop)
			_ = c.watcher.Stop()
			c.wg.Wait()
		}
		c.broadcaster.Shutdown()

		if c.builder != nil {
			c.builder.Shutdown()
		}
		if c.symbolSearch != nil {
			c.symbolSearch.Shutdown()
		}
		c.contentSearch.Shutdown()
		c.pathSearch.Shutdown()

		for _, ch := range c.outboxes {
			close(ch)
		}
	})
}
