package rescan

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrHookSealed is returned by Hook.Subscribe once the host has sealed the
// hook against further observers.
var ErrHookSealed = errors.New("rescan: hook is sealed")

// Renderer describes a renderer attached to a hook.
type Renderer struct {
	ID      int
	Name    string
	Version string
}

// HookObserver receives host notifications. Nil fields are skipped.
type HookObserver struct {
	OnInject         func(r Renderer)
	OnCommitRoot     func(rendererID int, root TreeRoot, priority int)
	OnCommitUnmount  func(rendererID int, n *Node)
	OnPostCommitRoot func(rendererID int, root TreeRoot)
}

type hookEntry struct {
	id  int
	obs HookObserver
}

// Hook is the host's instrumentation point. The host attaches renderers and
// fires commit notifications; observers are called synchronously in the
// order they subscribed, on the host's goroutine.
type Hook struct {
	mu        sync.Mutex
	renderers []Renderer
	observers []hookEntry
	nextObs   int
	sealed    bool
	synthetic bool
}

// NewHook creates an empty hook, as a host would when it boots.
func NewHook() *Hook {
	return &Hook{}
}

// newSyntheticHook creates the hook an engine installs when the host has not
// provided one.
func newSyntheticHook() *Hook {
	return &Hook{synthetic: true}
}

// Synthetic reports whether the hook was installed by an engine rather than
// the host.
func (h *Hook) Synthetic() bool {
	return h.synthetic
}

// Seal forbids further subscriptions. Existing observers keep receiving
// notifications.
func (h *Hook) Seal() {
	h.mu.Lock()
	h.sealed = true
	h.mu.Unlock()
}

// Subscribe appends an observer. Renderers attached earlier are replayed to
// its OnInject. The returned function removes the observer.
func (h *Hook) Subscribe(obs HookObserver) (func(), error) {
	h.mu.Lock()
	if h.sealed {
		h.mu.Unlock()
		return nil, ErrHookSealed
	}
	h.nextObs++
	id := h.nextObs
	h.observers = append(h.observers, hookEntry{id: id, obs: obs})
	attached := append([]Renderer(nil), h.renderers...)
	h.mu.Unlock()

	if obs.OnInject != nil {
		for _, r := range attached {
			obs.OnInject(r)
		}
	}
	return func() { h.unsubscribe(id) }, nil
}

func (h *Hook) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.observers {
		if e.id == id {
			h.observers = append(h.observers[:i], h.observers[i+1:]...)
			return
		}
	}
}

// Inject attaches a renderer and returns its id.
func (h *Hook) Inject(r Renderer) int {
	h.mu.Lock()
	r.ID = len(h.renderers) + 1
	h.renderers = append(h.renderers, r)
	obs := h.snapshot()
	h.mu.Unlock()
	for _, e := range obs {
		if e.obs.OnInject != nil {
			e.obs.OnInject(r)
		}
	}
	return r.ID
}

// Renderers returns the attached renderers.
func (h *Hook) Renderers() []Renderer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Renderer(nil), h.renderers...)
}

// CommitRoot notifies observers that a mutation batch was committed on root.
func (h *Hook) CommitRoot(rendererID int, root TreeRoot, priority int) {
	for _, e := range h.observersSnapshot() {
		if e.obs.OnCommitRoot != nil {
			e.obs.OnCommitRoot(rendererID, root, priority)
		}
	}
}

// CommitUnmount notifies observers that n was removed in the current batch.
func (h *Hook) CommitUnmount(rendererID int, n *Node) {
	for _, e := range h.observersSnapshot() {
		if e.obs.OnCommitUnmount != nil {
			e.obs.OnCommitUnmount(rendererID, n)
		}
	}
}

// PostCommitRoot notifies observers that post-commit work on root finished.
func (h *Hook) PostCommitRoot(rendererID int, root TreeRoot) {
	for _, e := range h.observersSnapshot() {
		if e.obs.OnPostCommitRoot != nil {
			e.obs.OnPostCommitRoot(rendererID, root)
		}
	}
}

func (h *Hook) observersSnapshot() []hookEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

// snapshot copies the observer list. Caller holds h.mu.
func (h *Hook) snapshot() []hookEntry {
	return append([]hookEntry(nil), h.observers...)
}
