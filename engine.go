package rescan

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for failures the engine swallows.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithFrameRate sets the source of the frame rate stamped on every Render.
// Defaults to ebiten.ActualFPS.
func WithFrameRate(fn func() float64) Option {
	return func(e *Engine) { e.frameRate = fn }
}

// WithDebug enables per-commit timing stats and tree depth warnings on
// stderr.
func WithDebug(enabled bool) Option {
	return func(e *Engine) { e.debug = enabled }
}

// withDebugOutput redirects debug output (tests).
func withDebugOutput(w io.Writer) Option {
	return func(e *Engine) { e.debugOut = w }
}

// Engine observes one hook. It is the handle every other operation goes
// through; there is no package-level state.
//
// Commit processing runs synchronously on the goroutine that fires the hook.
// RegisterInstance and Unregister may be called from any goroutine.
type Engine struct {
	hook        *Hook
	ids         *Registry
	roots       map[TreeRoot]*rootState
	nextSeq     uint64
	unsubscribe func()

	mu           sync.Mutex
	instances    []*Instance
	nextInstance int

	logger    *slog.Logger
	frameRate func() float64
	debug     bool
	debugOut  io.Writer

	pendingUnmounts []*Node
	batch           batchState
}

// NewEngine creates an engine and subscribes it to hook. A nil hook makes
// the engine install a synthetic one, available through Hook. If the hook
// refuses the subscription the failure is logged and the engine can still be
// fed directly with Commit.
func NewEngine(hook *Hook, opts ...Option) *Engine {
	if hook == nil {
		hook = newSyntheticHook()
	}
	e := &Engine{
		hook:      hook,
		ids:       NewRegistry(),
		roots:     make(map[TreeRoot]*rootState),
		frameRate: ebiten.ActualFPS,
		debugOut:  os.Stderr,
		batch:     newBatchState(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	unsub, err := hook.Subscribe(HookObserver{
		OnInject:         e.handleInject,
		OnCommitRoot:     e.handleCommitRoot,
		OnCommitUnmount:  e.handleCommitUnmount,
		OnPostCommitRoot: e.handlePostCommitRoot,
	})
	if err != nil {
		e.logger.Warn("rescan: hook subscription refused, commits must be fed directly", "error", err)
	} else {
		e.unsubscribe = unsub
	}
	return e
}

// Hook returns the hook the engine observes.
func (e *Engine) Hook() *Hook {
	return e.hook
}

// Registry returns the engine's identity registry.
func (e *Engine) Registry() *Registry {
	return e.ids
}

// Subscribed reports whether the engine receives hook notifications.
func (e *Engine) Subscribed() bool {
	return e.unsubscribe != nil
}

// Close detaches the engine from its hook.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// Commit processes one mutation batch for root. The hook calls this for
// every commit; hosts without a hook may call it directly.
func (e *Engine) Commit(root TreeRoot) {
	instances := e.snapshotInstances()
	for _, inst := range instances {
		if inst.cb.OnCommitStart != nil {
			inst.cb.OnCommitStart()
		}
	}

	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	e.beginBatch(instances)
	e.flushPendingUnmounts()
	seq := e.traverseRoot(root)
	stats := debugStats{seq: seq, records: e.batch.records}
	e.endBatch()

	for _, inst := range instances {
		if inst.cb.OnCommitFinish != nil {
			inst.cb.OnCommitFinish()
		}
	}

	if e.debug {
		stats.traverseTime = time.Since(t0)
		stats.trackedIDs = e.ids.Len()
		e.debugLog(stats)
	}
}

// ReleaseRoot drops the observation state of root and forgets the ids of
// the last tree observed on it.
func (e *Engine) ReleaseRoot(root TreeRoot) {
	st, ok := e.roots[root]
	if !ok {
		return
	}
	delete(e.roots, root)
	if st.prev == nil {
		return
	}
	stack := []*Node{st.prev}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e.ids.Forget(n)
		for c := n.Child; c != nil; c = c.Sibling {
			stack = append(stack, c)
		}
	}
}

// --- Hook handlers ---

func (e *Engine) handleInject(Renderer) {
	for _, inst := range e.snapshotInstances() {
		if inst.cb.OnActive != nil {
			inst.cb.OnActive()
		}
	}
}

func (e *Engine) handleCommitRoot(_ int, root TreeRoot, _ int) {
	e.Commit(root)
}

// handleCommitUnmount queues n; it is reported at the start of the next
// batch so that it shares the batch's commit bracket and dedupe set. The
// host has deleted n, so its id is forgotten when that batch ends. Nodes
// that merely leave the tree keep their ids.
func (e *Engine) handleCommitUnmount(_ int, n *Node) {
	if n == nil {
		return
	}
	e.pendingUnmounts = append(e.pendingUnmounts, n)
}

// handlePostCommitRoot reports unmounts that arrived without a commit.
func (e *Engine) handlePostCommitRoot(int, TreeRoot) {
	if len(e.pendingUnmounts) == 0 {
		return
	}
	instances := e.snapshotInstances()
	e.beginBatch(instances)
	e.flushPendingUnmounts()
	e.endBatch()
}

func (e *Engine) flushPendingUnmounts() {
	for _, n := range e.pendingUnmounts {
		e.unmount(n)
		e.batch.forget = append(e.batch.forget, n)
	}
	clear(e.pendingUnmounts)
	e.pendingUnmounts = e.pendingUnmounts[:0]
}
