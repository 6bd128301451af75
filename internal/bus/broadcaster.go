package bus

import (
	"sync"

	"github.com/ktnyt/fae-sub001/internal/message"
)

// Broadcaster fans one input stream out to N registered outputs, cloning
// each message (messages are small value types, so cloning is just a copy).
// Ordering within the single input stream is preserved end-to-end across
// every output (spec.md §4.1); ordering across independently-registered
// broadcasters is unspecified.
type Broadcaster struct {
	mu      sync.RWMutex
	outputs []chan<- message.Message
	in      chan message.Message
	done    chan struct{}
	once    sync.Once
}

// NewBroadcaster creates a Broadcaster and starts its fan-out goroutine.
func NewBroadcaster(inboxSize int) *Broadcaster {
	b := &Broadcaster{
		in:   make(chan message.Message, inboxSize),
		done: make(chan struct{}),
	}
	go b.run()
	return b
}

// In returns the channel producers send into; every message sent here is
// delivered to every currently-registered output.
func (b *Broadcaster) In() chan<- message.Message { return b.in }

// Register adds out to the set of destinations. Safe to call concurrently
// with Broadcast traffic.
func (b *Broadcaster) Register(out chan<- message.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outputs = append(b.outputs, out)
}

func (b *Broadcaster) run() {
	defer close(b.done)
	for msg := range b.in {
		b.mu.RLock()
		outs := make([]chan<- message.Message, len(b.outputs))
		copy(outs, b.outputs)
		b.mu.RUnlock()
		for _, out := range outs {
			sendOrDrop(out, msg)
		}
	}
}

// sendOrDrop delivers msg to out. A send to a closed destination panics
// internally; the panic is recovered and the message is dropped without
// logging, so the caller continues and never crashes.
func sendOrDrop(out chan<- message.Message, msg message.Message) {
	defer func() { recover() }()
	out <- msg
}

// Shutdown closes the input channel and waits for the fan-out goroutine to
// drain. Idempotent.
func (b *Broadcaster) Shutdown() {
	b.once.Do(func() {
		close(b.in)
	})
	<-b.done
}

// Merger fans multiple independent input streams into a single logical
// output channel — the dual of Broadcaster. Order within any one input
// stream is preserved; order across distinct input streams is unspecified
// (spec.md §4.1).
type Merger struct {
	out  chan message.Message
	wg   sync.WaitGroup
}

// NewMerger creates a Merger with the given output buffer size.
func NewMerger(outSize int) *Merger {
	return &Merger{out: make(chan message.Message, outSize)}
}

// Out returns the single merged output channel.
func (m *Merger) Out() <-chan message.Message { return m.out }

// AddSource starts forwarding every message from in into the merged output
// until in closes.
func (m *Merger) AddSource(in <-chan message.Message) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for msg := range in {
			sendOrDrop(m.out, msg)
		}
	}()
}

// CloseWhenDone closes the merged output once every registered source has
// closed. Must be called after all AddSource calls are issued.
func (m *Merger) CloseWhenDone() {
	go func() {
		m.wg.Wait()
		close(m.out)
	}()
}
