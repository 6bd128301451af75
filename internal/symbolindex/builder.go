// Package symbolindex implements fae's symbol-index pipeline (spec.md
// §4.3): the builder (FIFO+dedup operation queue plus per-file state
// machine), the symbol store, the skim-style fuzzy query, and the symbol
// search actor. Grounded on the teacher's internal/indexing (walk +
// incremental update orchestration) and internal/core (store/query split).
package symbolindex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ktnyt/fae-sub001/internal/bus"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/extractsym"
	"github.com/ktnyt/fae-sub001/internal/ferrors"
	"github.com/ktnyt/fae-sub001/internal/ignore"
	"github.com/ktnyt/fae-sub001/internal/message"
)

const defaultMaxConcurrentExtractions = 4

// BuilderOptions configures a Builder. All fields are constructor
// parameters (spec.md §6); there is no environment or config-file input.
type BuilderOptions struct {
	Root                     string
	Ignore                   *ignore.Matcher
	Extractor                extractsym.SymbolExtractor
	Store                    *Store
	Extensions               map[string]bool // known source extensions, e.g. {".go": true}; nil defaults to Go only
	MaxConcurrentExtractions int64           // 0 uses defaultMaxConcurrentExtractions
	Log                      *debug.Logger
}

// Builder is the symbol-index builder actor: it owns the pending-operation
// queue and drives the per-file Idle->Queued->Processing->Idle state
// machine spec.md §4.3 describes. Extraction work for distinct files runs
// concurrently, bounded by a semaphore (teacher go.mod's
// golang.org/x/sync, used the way the teacher bounds its own parallel file
// workers); this is safe because the queue keeps a path marked as
// processing until its operation finishes, so a given path is never
// dequeued twice while a prior operation on it is still in flight.
type Builder struct {
	opts  BuilderOptions
	log   *debug.Logger
	actor *bus.Actor
	queue *opQueue
	sem   *semaphore.Weighted

	statsMu sync.Mutex
	stats   message.IndexingStats

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewBuilder creates and starts a Builder. outbox is where ClearSymbolIndex,
// PushSymbolIndex, CompleteSymbolIndex, ReportSymbolIndex, and
// CompleteInitialIndexing events are emitted.
func NewBuilder(opts BuilderOptions, outbox chan<- message.Message) *Builder {
	if opts.Log == nil {
		opts.Log = debug.New("[symbolindex] ", false)
	}
	if opts.Extensions == nil {
		opts.Extensions = map[string]bool{".go": true}
	}
	maxConc := opts.MaxConcurrentExtractions
	if maxConc <= 0 {
		maxConc = defaultMaxConcurrentExtractions
	}

	b := &Builder{
		opts:     opts,
		log:      opts.Log,
		queue:    newOpQueue(),
		sem:      semaphore.NewWeighted(maxConc),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	b.actor = bus.NewActor("symbolindex-builder", 256, outbox, bus.HandlerFunc(b.onMessage), opts.Log)
	go b.run()
	return b
}

// Inbox is where Initialize and DetectFile{Create,Update,Delete} messages
// are delivered.
func (b *Builder) Inbox() chan<- message.Message { return b.actor.Inbox() }

// Stats returns a snapshot of current indexing progress.
func (b *Builder) Stats() message.IndexingStats {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	return b.stats
}

// Shutdown stops the builder's worker loop and its underlying actor.
func (b *Builder) Shutdown() {
	b.once.Do(func() { close(b.shutdown) })
	<-b.done
	b.actor.Shutdown()
}

func (b *Builder) onMessage(msg message.Message, _ *bus.Controller) error {
	if msg.Method == message.MethodInitialize {
		go b.initialize()
		return nil
	}
	if kind, ok := message.DetectFileKind(msg.Method); ok && msg.Payload.FileOperation != nil {
		b.enqueue(kind, msg.Payload.FileOperation.Path)
	}
	return nil
}

// initialize walks Root honoring ignore rules and the known-extension
// filter, enqueuing a Create for every matching file (spec.md §4.3).
func (b *Builder) initialize() {
	_ = filepath.Walk(b.opts.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			relPath, relErr := filepath.Rel(b.opts.Root, path)
			if relErr == nil && b.opts.Ignore != nil && b.opts.Ignore.ShouldIgnore(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !b.acceptsPath(path) {
			return nil
		}
		b.enqueue(message.FileOpCreate, path)
		return nil
	})
}

// enqueue applies the ignore/extension filter to non-delete operations —
// deletes bypass it per spec.md §4.3, since stale entries must be purged
// even for a path that would now be excluded — then pushes onto the queue.
func (b *Builder) enqueue(kind message.FileOpKind, path string) {
	if kind != message.FileOpDelete && !b.acceptsPath(path) {
		return
	}
	b.statsMu.Lock()
	b.stats.QueuedFiles++
	b.statsMu.Unlock()
	b.queue.push(message.FileOperation{Kind: kind, Path: path})
}

func (b *Builder) acceptsPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !b.opts.Extensions[ext] {
		return false
	}
	relPath, err := filepath.Rel(b.opts.Root, path)
	if err != nil {
		relPath = path
	}
	if b.opts.Ignore != nil && b.opts.Ignore.ShouldIgnore(relPath, false) {
		return false
	}
	return true
}

// run drains the queue whenever it is signaled non-empty, processing
// operations with bounded concurrency, and emits CompleteInitialIndexing
// once per drain that follows a non-empty state.
func (b *Builder) run() {
	defer close(b.done)
	ctl := b.actor.Controller()

	var wg sync.WaitGroup
	for {
		select {
		case <-b.shutdown:
			wg.Wait()
			return
		case <-b.queue.notify:
		}

		for {
			spawned := false
			for {
				op, ok := b.queue.pop()
				if !ok {
					break
				}
				spawned = true
				wg.Add(1)
				go func(op message.FileOperation) {
					defer wg.Done()
					defer b.queue.markDone(op.Path)
					b.processOne(op, ctl)
				}(op)
			}
			wg.Wait()
			if b.queue.len() == 0 || !spawned {
				break
			}
		}

		if b.queue.drainedSinceWork() {
			if err := ctl.Send(message.NewCompleteInitialIndexing()); err != nil {
				b.log.Warnf("symbolindex: %v", err)
			}
		}
	}
}

func (b *Builder) processOne(op message.FileOperation, ctl *bus.Controller) {
	switch op.Kind {
	case message.FileOpCreate, message.FileOpUpdate:
		b.processUpsert(op.Path, ctl)
	case message.FileOpDelete:
		b.processDelete(op.Path, ctl)
	}
}

func (b *Builder) processUpsert(path string, ctl *bus.Controller) {
	_ = ctl.Send(message.NewClearSymbolIndex(path))
	b.opts.Store.Clear(path)

	var records []message.SymbolRecord
	if b.opts.Extractor != nil {
		if err := b.sem.Acquire(context.Background(), 1); err == nil {
			r, extractErr := b.opts.Extractor.Extract(path)
			b.sem.Release(1)
			if extractErr != nil {
				b.log.Warnf("symbolindex: %v", ferrors.NewIndexingError("extract", path, extractErr))
			} else {
				records = r
			}
		}
	}

	for _, r := range records {
		b.opts.Store.Push(r)
		_ = ctl.Send(message.NewPushSymbolIndex(r))
	}
	_ = ctl.Send(message.NewCompleteSymbolIndex(path))

	b.statsMu.Lock()
	b.stats.IndexedFiles++
	b.stats.SymbolsFound += len(records)
	stats := b.stats
	b.statsMu.Unlock()

	_ = ctl.Send(message.NewReportSymbolIndex(stats))
}

func (b *Builder) processDelete(path string, ctl *bus.Controller) {
	_ = ctl.Send(message.NewClearSymbolIndex(path))
	b.opts.Store.Clear(path)
	_ = ctl.Send(message.NewCompleteSymbolIndex(path))
}
