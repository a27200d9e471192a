package rescan

import (
	"context"
	"iter"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GeometryEntry is the resolved on-screen state of one element.
type GeometryEntry struct {
	Element      any
	Rect         Rect
	Intersecting bool
}

// GeometryObserver resolves element rectangles asynchronously. Observe
// starts observing elements and calls deliver, from any goroutine and any
// number of times, with bursts of entries. Every element must eventually be
// delivered once (non-intersecting if it cannot be measured) for a query to
// complete. The returned function stops observation; deliver must not be
// called after it returns.
type GeometryObserver interface {
	Observe(elements []any, deliver func([]GeometryEntry)) (disconnect func())
}

// batchedRects observes all elements through one shared observation and
// yields bursts of newly resolved entries as they arrive, so callers can
// start drawing before the slowest element resolves. Each element is
// yielded at most once. Breaking out of the loop or cancelling ctx abandons
// the query; nothing pending is cancelled, its results are just dropped.
func batchedRects(ctx context.Context, obs GeometryObserver, elements []any) iter.Seq[[]GeometryEntry] {
	return func(yield func([]GeometryEntry) bool) {
		ordered := dedupeOrdered(elements)
		if len(ordered) == 0 {
			return
		}
		unique := make(map[any]struct{}, len(ordered))
		for _, el := range ordered {
			unique[el] = struct{}{}
		}

		// Every burst carries at least one unseen element, so this buffer
		// never fills and deliver never blocks.
		bursts := make(chan []GeometryEntry, len(unique))
		done := make(chan struct{})
		var (
			mu     sync.Mutex
			seen   = make(map[any]struct{}, len(unique))
			closed bool
		)
		deliver := func(entries []GeometryEntry) {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			var fresh []GeometryEntry
			for _, en := range entries {
				if _, ok := seen[en.Element]; ok {
					continue
				}
				if _, want := unique[en.Element]; !want {
					continue
				}
				seen[en.Element] = struct{}{}
				fresh = append(fresh, en)
			}
			if len(fresh) > 0 {
				bursts <- fresh
			}
			if len(seen) == len(unique) {
				closed = true
				close(done)
			}
		}

		disconnect := obs.Observe(ordered, deliver)
		defer disconnect()

		for {
			select {
			case burst := <-bursts:
				if !yield(burst) {
					return
				}
			case <-done:
				for {
					select {
					case burst := <-bursts:
						if !yield(burst) {
							return
						}
					default:
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

// dedupeOrdered drops nil and repeated elements, keeping first-seen order.
func dedupeOrdered(elements []any) []any {
	seen := make(map[any]struct{}, len(elements))
	out := make([]any, 0, len(elements))
	for _, el := range elements {
		if el == nil {
			continue
		}
		if _, ok := seen[el]; ok {
			continue
		}
		seen[el] = struct{}{}
		out = append(out, el)
	}
	return out
}

// --- FuncObserver ---

// RectFunc measures one element. ok is false when the element is not on
// screen or cannot be measured.
type RectFunc func(element any) (r Rect, ok bool)

// FuncObserver is a GeometryObserver that measures elements with a RectFunc
// on a bounded pool of goroutines and delivers results in bursts.
type FuncObserver struct {
	measure RectFunc
	// Workers bounds concurrent measurements. Zero means 4.
	Workers int
	// BurstSize is the number of entries per delivery. Zero means 16.
	BurstSize int
}

// NewFuncObserver creates a FuncObserver around measure.
func NewFuncObserver(measure RectFunc) *FuncObserver {
	return &FuncObserver{measure: measure}
}

// Observe implements GeometryObserver.
func (o *FuncObserver) Observe(elements []any, deliver func([]GeometryEntry)) func() {
	workers := o.Workers
	if workers <= 0 {
		workers = 4
	}
	burstSize := o.BurstSize
	if burstSize <= 0 {
		burstSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		var g errgroup.Group
		g.SetLimit(workers)
		for start := 0; start < len(elements); start += burstSize {
			chunk := elements[start:min(start+burstSize, len(elements))]
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				entries := make([]GeometryEntry, 0, len(chunk))
				for _, el := range chunk {
					r, ok := o.measure(el)
					entries = append(entries, GeometryEntry{
						Element:      el,
						Rect:         r,
						Intersecting: ok && !r.Empty(),
					})
				}
				if ctx.Err() == nil {
					deliver(entries)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
	return func() {
		cancel()
		<-finished
	}
}
