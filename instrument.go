package rescan

import "time"

// Render is the record emitted for one reported node in one commit.
// Records are handed to callbacks synchronously and never kept by the
// engine.
type Render struct {
	ID             uint32
	Phase          Phase
	Kind           Kind
	DisplayName    string
	Count          int
	Changes        []Change
	SelfTime       time.Duration
	DidMutate      bool
	IsMemoCompiled bool
	FrameRate      float64
}

// Callbacks is one consumer configuration. Nil callbacks are skipped.
type Callbacks struct {
	// OnActive fires when a renderer attaches to the hook, and on
	// registration for renderers that are already attached.
	OnActive       func()
	OnCommitStart  func()
	OnRender       func(n *Node, renders []Render)
	OnCommitFinish func()
	// TrackChanges asks for itemized changes on update records.
	TrackChanges bool
}

// Instance is a registered consumer.
type Instance struct {
	engine *Engine
	id     int
	accept func(*Node) bool
	cb     Callbacks
}

// RegisterInstance adds a consumer. accept selects the nodes it wants; nil
// accepts every node. Consumers are called in registration order.
func (e *Engine) RegisterInstance(accept func(*Node) bool, cb Callbacks) *Instance {
	e.mu.Lock()
	e.nextInstance++
	inst := &Instance{engine: e, id: e.nextInstance, accept: accept, cb: cb}
	e.instances = append(e.instances, inst)
	e.mu.Unlock()

	if cb.OnActive != nil && len(e.hook.Renderers()) > 0 {
		cb.OnActive()
	}
	return inst
}

// Unregister removes the consumer. It stops receiving callbacks from the
// next commit on.
func (i *Instance) Unregister() {
	e := i.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	for j, other := range e.instances {
		if other == i {
			e.instances = append(e.instances[:j], e.instances[j+1:]...)
			return
		}
	}
}

func (e *Engine) snapshotInstances() []*Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Instance(nil), e.instances...)
}

// --- Batch dispatch ---

type batchState struct {
	instances []*Instance
	targets   []*Instance
	reported  map[uint32]struct{}
	forget    []*Node
	records   int
}

func newBatchState() batchState {
	return batchState{reported: make(map[uint32]struct{})}
}

func (e *Engine) beginBatch(instances []*Instance) {
	e.batch.instances = instances
	e.batch.records = 0
	clear(e.batch.reported)
}

// endBatch evicts the identities of nodes the host deleted during the batch.
// This happens after traversal so that ids stay stable within the batch.
func (e *Engine) endBatch() {
	for _, n := range e.batch.forget {
		e.ids.Forget(n)
	}
	clear(e.batch.forget)
	e.batch.forget = e.batch.forget[:0]
	e.batch.instances = nil
}

// report builds the Render for n and hands it to every consumer that
// accepts n. Each id is reported at most once per batch.
func (e *Engine) report(n *Node, phase Phase) {
	id := e.ids.ID(n)
	if _, dup := e.batch.reported[id]; dup {
		return
	}
	e.batch.reported[id] = struct{}{}

	targets := e.batch.targets[:0]
	track := false
	for _, inst := range e.batch.instances {
		if inst.cb.OnRender == nil {
			continue
		}
		if inst.accept != nil && !inst.accept(n) {
			continue
		}
		targets = append(targets, inst)
		track = track || inst.cb.TrackChanges
	}
	e.batch.targets = targets
	if len(targets) == 0 {
		return
	}

	r := Render{
		ID:             id,
		Phase:          phase,
		Kind:           n.Kind,
		DisplayName:    DisplayName(n),
		Count:          1,
		IsMemoCompiled: IsMemoCompiled(n),
		FrameRate:      e.frameRate(),
	}
	if phase != PhaseUnmount {
		r.SelfTime = SelfTime(n)
		r.DidMutate = DidMutateOutput(n)
	}
	if track && phase == PhaseUpdate {
		changes, err := ItemizedChanges(n)
		if err != nil {
			e.logger.Debug("rescan: skipped context changes", "node", r.DisplayName, "id", id, "error", err)
		}
		r.Changes = changes
	}
	e.batch.records++

	renders := []Render{r}
	for _, inst := range targets {
		inst.cb.OnRender(n, renders)
	}
}
