package content

import (
	"context"
	"sync"

	"github.com/ktnyt/fae-sub001/internal/command"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

// subprocessHandler adapts command.OutputHandler to the content package's
// OnResult callback, per DESIGN NOTES §9 ("subprocess output as messages,
// not futures"): lines arrive through the command actor's own loop, never
// as a separate future/promise.
type subprocessHandler struct {
	name     string
	log      *debug.Logger
	onResult OnResult

	mu     sync.Mutex
	count  int
	exitCh chan error
}

func (h *subprocessHandler) OnStdout(line string, ctl *command.Controller) {
	r, ok := parseGrepLine(line)
	if !ok {
		h.log.Warnf("%s: unparsable line: %q", h.name, line)
		return
	}
	h.mu.Lock()
	h.count++
	h.mu.Unlock()
	if !h.onResult(r) {
		ctl.Kill()
		// The killed child's exit notice is not guaranteed to arrive, so
		// release the waiting Search directly.
		select {
		case h.exitCh <- nil:
		default:
		}
	}
}

func (h *subprocessHandler) OnStderr(line string, ctl *command.Controller) {
	h.log.Warnf("%s: %s", h.name, line)
}

func (h *subprocessHandler) OnExit(err error, ctl *command.Controller) {
	select {
	case h.exitCh <- err:
	default:
	}
}

func (h *subprocessHandler) snapshotCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// subprocessBackend drives an external line-oriented search tool (ripgrep,
// ag) through the command package's CommandActor.
type subprocessBackend struct {
	name      string
	buildArgs func(message.SearchParams) []string
	log       *debug.Logger
}

func (b *subprocessBackend) Name() string { return b.name }

// Probe reports whether the backing executable is available by running it
// with --version and checking for a clean exit (spec.md §4.4 selection).
func (b *subprocessBackend) Probe(ctx context.Context) bool {
	done := make(chan bool, 1)
	handler := &probeHandler{done: done}
	actor := command.NewActor(b.name+"-probe", handler, b.log)
	defer actor.Shutdown()

	if err := actor.Controller().Spawn(command.Spec{Name: b.name, Args: []string{"--version"}}); err != nil {
		return false
	}
	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		actor.Controller().Kill()
		return false
	}
}

type probeHandler struct {
	done chan bool
}

func (p *probeHandler) OnStdout(string, *command.Controller) {}
func (p *probeHandler) OnStderr(string, *command.Controller) {}
func (p *probeHandler) OnExit(err error, ctl *command.Controller) {
	select {
	case p.done <- err == nil:
	default:
	}
}

// Search spawns the child once (Query then "." appended to buildArgs'
// flags, per spec.md §4.4) and streams its parsed stdout lines to
// onResult. Exit code is ignored per spec.md §6: a non-zero exit with no
// matches is normal for both ripgrep and ag.
func (b *subprocessBackend) Search(ctx context.Context, params message.SearchParams, root string, onResult OnResult) (int, error) {
	handler := &subprocessHandler{name: b.name, log: b.log, onResult: onResult, exitCh: make(chan error, 1)}
	actor := command.NewActor(b.name, handler, b.log)
	defer actor.Shutdown()

	args := append(b.buildArgs(params), params.Query, ".")
	if err := actor.Controller().Spawn(command.Spec{Name: b.name, Args: args, Dir: root}); err != nil {
		return 0, err
	}

	select {
	case <-ctx.Done():
		actor.Controller().Kill()
		return handler.snapshotCount(), ctx.Err()
	case <-handler.exitCh:
		return handler.snapshotCount(), nil
	}
}

// NewRipgrepBackend builds the ripgrep-backed Backend (spec.md §4.4).
func NewRipgrepBackend(log *debug.Logger) Backend {
	return &subprocessBackend{
		name: "rg",
		buildArgs: func(params message.SearchParams) []string {
			args := []string{"--line-number", "--column", "--no-heading", "--with-filename", "--color=never"}
			if params.Mode == message.ModeLiteral {
				args = append(args, "--fixed-strings")
			}
			return args
		},
		log: log,
	}
}

// NewAgBackend builds the ag-backed Backend (spec.md §4.4).
func NewAgBackend(log *debug.Logger) Backend {
	return &subprocessBackend{
		name: "ag",
		buildArgs: func(params message.SearchParams) []string {
			args := []string{"--line-numbers", "--column", "--nogroup", "--nocolor"}
			if params.Mode == message.ModeLiteral {
				args = append(args, "--literal")
			}
			return args
		},
		log: log,
	}
}

// probeBackend exposes Probe on the concrete backend types for selection,
// without widening the public Backend interface.
type probeBackend interface {
	Probe(ctx context.Context) bool
}

var (
	_ probeBackend = (*subprocessBackend)(nil)
)
