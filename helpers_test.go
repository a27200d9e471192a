package rescan

import "sync"

// element stands in for a host output instance.
type element struct {
	tag string
}

func fn(name string, children ...*Node) *Node {
	n := NewNode(KindFunction, &Component{Name: name})
	n.Flags = FlagPerformedWork
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func host(tag string, children ...*Node) *Node {
	n := NewNode(KindHostElement, tag)
	n.Element = &element{tag: tag}
	n.Props = Props{"class": tag}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func anchor(children ...*Node) *Node {
	a := NewRootAnchor("app")
	for _, c := range children {
		a.AppendChild(c)
	}
	return a
}

// regen builds the next generation of the whole subtree under n, keeping
// the same shape. Component nodes come out without FlagPerformedWork.
func regen(n *Node) *Node {
	next := n.NextGeneration()
	for c := n.Child; c != nil; c = c.Sibling {
		next.AppendChild(regen(c))
	}
	return next
}

// find returns the first node in the subtree named name.
func find(n *Node, name string) *Node {
	if n == nil {
		return nil
	}
	if n.Kind != KindRootAnchor && DisplayName(n) == name {
		return n
	}
	for c := n.Child; c != nil; c = c.Sibling {
		if f := find(c, name); f != nil {
			return f
		}
	}
	return nil
}

func fixedFPS() float64 { return 60 }

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(nil, append([]Option{WithFrameRate(fixedFPS)}, opts...)...)
}

// recorder collects every Render an instance receives.
type recorder struct {
	mu      sync.Mutex
	renders []Render
	starts  int
	ends    int
}

func (r *recorder) callbacks(track bool) Callbacks {
	return Callbacks{
		OnCommitStart:  func() { r.mu.Lock(); r.starts++; r.mu.Unlock() },
		OnCommitFinish: func() { r.mu.Lock(); r.ends++; r.mu.Unlock() },
		OnRender: func(_ *Node, rs []Render) {
			r.mu.Lock()
			r.renders = append(r.renders, rs...)
			r.mu.Unlock()
		},
		TrackChanges: track,
	}
}

func (r *recorder) take() []Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.renders
	r.renders = nil
	return out
}

// summary renders records as "phase:name" for compact comparisons.
func summary(rs []Render) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Phase.String() + ":" + r.DisplayName
	}
	return out
}
