package rescan

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// blueprint accumulates the renders of one composite node between flushes.
type blueprint struct {
	name      string
	count     int
	elements  []any
	didMutate bool
}

// Pipeline turns render records into animated outlines. It registers itself
// as an engine consumer for composite nodes, accumulates blueprints per node
// id, and periodically resolves their on-screen rectangles and hands them to
// a Canvas.
//
// In direct mode the presentation loop calls Step once per frame. In
// off-thread mode a worker goroutine owns the canvas and publishes frames on
// its own ticker. Either way Frame returns the latest frame.
type Pipeline struct {
	engine *Engine
	obs    GeometryObserver
	cfg    OutlineConfig
	logger *slog.Logger
	inst   *Instance

	mu      sync.Mutex
	pending map[uint32]*blueprint

	resolves sync.WaitGroup

	canvasMu sync.Mutex
	canvas   *Canvas
	worker   *worker

	frame atomic.Pointer[Frame]
}

// NewPipeline creates a pipeline observing e and resolving geometry with
// obs. Zero config fields take defaults.
func NewPipeline(e *Engine, obs GeometryObserver, cfg OutlineConfig) *Pipeline {
	cfg.defaults()
	p := &Pipeline{
		engine:  e,
		obs:     obs,
		cfg:     cfg,
		logger:  e.logger,
		pending: make(map[uint32]*blueprint),
	}
	fn, ok := easingByName(cfg.Easing)
	if !ok {
		p.logger.Warn("rescan: unknown easing, using linear", "easing", cfg.Easing)
	}
	canvas := NewCanvas(CanvasConfig{
		TotalFrames:   cfg.TotalFrames,
		Interpolation: cfg.Interpolation,
		LabelBudget:   cfg.LabelBudget,
		Ease:          fn,
	})
	if cfg.OffThread {
		p.worker = newWorker(canvas, cfg.FrameInterval, p.publish)
	} else {
		p.canvas = canvas
	}
	p.frame.Store(&Frame{})
	p.inst = e.RegisterInstance(IsComposite, Callbacks{OnRender: p.onRender})
	return p
}

func (p *Pipeline) onRender(n *Node, renders []Render) {
	var elements []any
	for _, leaf := range NearestLeafDescendants(n) {
		if leaf.Element != nil {
			elements = append(elements, leaf.Element)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range renders {
		if r.Phase == PhaseUnmount {
			continue
		}
		bp, ok := p.pending[r.ID]
		if !ok {
			bp = &blueprint{}
			p.pending[r.ID] = bp
		}
		bp.name = r.DisplayName
		bp.count += r.Count
		bp.didMutate = bp.didMutate || r.DidMutate
		bp.elements = append(bp.elements, elements...)
	}
}

// takePending swaps out the accumulated blueprints.
func (p *Pipeline) takePending() map[uint32]*blueprint {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return nil
	}
	out := p.pending
	p.pending = make(map[uint32]*blueprint, len(out))
	return out
}

// Flush resolves the blueprints accumulated so far and hands the resulting
// outlines to the canvas. It blocks until every element resolved or ctx is
// done.
func (p *Pipeline) Flush(ctx context.Context) {
	if bps := p.takePending(); bps != nil {
		p.resolve(ctx, bps)
	}
}

// Run flushes every FlushInterval until ctx is done. Each flush resolves on
// its own goroutine, so a slow resolution does not delay the next flush.
// Run waits for in-flight resolutions before returning.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()
	defer p.resolves.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bps := p.takePending()
			if bps == nil {
				continue
			}
			p.resolves.Add(1)
			go func() {
				defer p.resolves.Done()
				p.resolve(ctx, bps)
			}()
		}
	}
}

// resolve measures every element of bps through one shared observation.
// A blueprint is packed and sent as soon as all of its elements resolved,
// so outlines appear burst by burst.
func (p *Pipeline) resolve(ctx context.Context, bps map[uint32]*blueprint) {
	owners := make(map[any][]uint32)
	remaining := make(map[uint32]int, len(bps))
	var elements []any
	for id, bp := range bps {
		for _, el := range dedupeOrdered(bp.elements) {
			if _, seen := owners[el]; !seen {
				elements = append(elements, el)
			}
			owners[el] = append(owners[el], id)
			remaining[id]++
		}
	}

	rects := make(map[uint32][]Rect, len(bps))
	for burst := range batchedRects(ctx, p.obs, elements) {
		var ready []uint32
		for _, en := range burst {
			for _, id := range owners[en.Element] {
				if en.Intersecting {
					rects[id] = append(rects[id], en.Rect)
				}
				remaining[id]--
				if remaining[id] == 0 && len(rects[id]) > 0 {
					ready = append(ready, id)
				}
			}
		}
		if len(ready) > 0 {
			buf, names := packOutlines(ready, bps, rects)
			p.send(buf, names)
		}
	}

	if ctx.Err() != nil {
		dropped := 0
		for _, n := range remaining {
			if n > 0 {
				dropped++
			}
		}
		if dropped > 0 {
			p.logger.Debug("rescan: geometry resolution abandoned", "dropped", dropped, "error", ctx.Err())
		}
	}
}

// packOutlines writes one tuple per ready blueprint into a fresh buffer.
func packOutlines(ready []uint32, bps map[uint32]*blueprint, rects map[uint32][]Rect) ([]float32, []string) {
	buf := make([]float32, 0, len(ready)*outlineStride)
	names := make([]string, 0, len(ready))
	for _, id := range ready {
		bp := bps[id]
		r := mergeRects(rects[id])
		var didMutate float32
		if bp.didMutate {
			didMutate = 1
		}
		buf = append(buf,
			float32(id), float32(bp.count),
			float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height),
			didMutate)
		names = append(names, bp.name)
	}
	return buf, names
}

// send hands a packed buffer to the canvas. The caller must not touch buf
// or names afterwards.
func (p *Pipeline) send(buf []float32, names []string) {
	if p.worker != nil {
		p.worker.send(drawMessage{buf: buf, names: names})
		return
	}
	p.canvasMu.Lock()
	p.canvas.Apply(buf, names)
	p.canvasMu.Unlock()
}

// Step advances the animation by one frame in direct mode and reports
// whether outlines are still animating. It does nothing when idle or when
// the pipeline runs off-thread.
func (p *Pipeline) Step() bool {
	if p.worker != nil {
		return p.worker.isRunning()
	}
	p.canvasMu.Lock()
	defer p.canvasMu.Unlock()
	if !p.canvas.Active() {
		return false
	}
	p.publish(p.canvas.Step())
	return p.canvas.Active()
}

func (p *Pipeline) publish(f *Frame) {
	p.frame.Store(f)
}

// Frame returns the latest published frame. It is never nil.
func (p *Pipeline) Frame() *Frame {
	return p.frame.Load()
}

// Close unregisters the pipeline from its engine and stops the worker.
// Pending blueprints are dropped.
func (p *Pipeline) Close() {
	p.inst.Unregister()
	if p.worker != nil {
		p.worker.close()
	}
}
