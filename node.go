package rescan

import "time"

// --- Host tree model ---

// Component describes a user component type. Nodes of composite kinds carry
// a *Component in Node.Type.
type Component struct {
	Name        string
	DisplayName string
	// Wraps is the inner component of a memo or forward-ref wrapper.
	Wraps *Component
}

// ModeMarker is a legacy mode wrapper type. Nodes whose Type is a
// ModeMarker are never reported.
type ModeMarker struct {
	name string
}

// Legacy mode markers recognised by the classifier.
var (
	ConcurrentModeMarker = &ModeMarker{name: "ConcurrentMode"}
	AsyncModeMarker      = &ModeMarker{name: "AsyncMode"}
)

// Context is a subscription source. Identity is by pointer.
type Context struct {
	Name string
}

// Subscription is one entry of a node's subscription list.
type Subscription struct {
	Source *Context
	Value  any
}

// Props is a node's committed props. Two Props are "the same" only when they
// share a backing map.
type Props map[string]any

// StateSlot is one entry of a function component's state list. Slots have no
// name; they are compared by position.
type StateSlot struct {
	Value any
	Next  *StateSlot
}

// RootState is the committed state of a root anchor node.
type RootState struct {
	Element    any
	Dehydrated bool
}

// Node is one element of the host's retained tree. The engine only reads and
// annotates nodes; the host owns their lifecycle.
type Node struct {
	Kind Kind
	Type any
	Key  string

	Props         Props
	State         any
	Ref           any
	Subscriptions []Subscription
	MemoCache     []any

	Flags        Flags
	SubtreeFlags Flags
	TotalTime    time.Duration

	// Element is the host instance behind a leaf output node. It must be
	// comparable (typically a pointer).
	Element any

	// Hierarchy
	Parent  *Node
	Child   *Node
	Sibling *Node

	// Alternate is the other generation of the same logical node.
	Alternate *Node
}

// NewNode creates a detached node.
func NewNode(kind Kind, typ any) *Node {
	return &Node{Kind: kind, Type: typ}
}

// NewRootAnchor creates a root anchor whose committed state renders element.
func NewRootAnchor(element any) *Node {
	return &Node{Kind: KindRootAnchor, State: &RootState{Element: element}}
}

// CurrentNode implements TreeRoot for a node handed over directly.
func (n *Node) CurrentNode() *Node {
	return n
}

// --- Tree manipulation (host side) ---

// AppendChild links child as the last child of n.
// Panics if child is nil or child is an ancestor of n (cycle).
func (n *Node) AppendChild(child *Node) *Node {
	if child == nil {
		panic("rescan: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("rescan: adding child would create a cycle")
	}
	child.Parent = n
	child.Sibling = nil
	if n.Child == nil {
		n.Child = child
		return child
	}
	last := n.Child
	for last.Sibling != nil {
		last = last.Sibling
	}
	last.Sibling = child
	return child
}

// Children returns the child chain as a slice.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.Child; c != nil; c = c.Sibling {
		out = append(out, c)
	}
	return out
}

// Detach clears the node's parent link, marking it as no longer reachable.
func (n *Node) Detach() {
	n.Parent = nil
}

// NextGeneration returns the alternate of n prepared for the next commit:
// committed values are copied over, structure and flags are cleared. The
// alternate link is symmetric. An existing alternate is recycled.
func (n *Node) NextGeneration() *Node {
	next := n.Alternate
	if next == nil {
		next = &Node{}
	}
	*next = Node{
		Kind:          n.Kind,
		Type:          n.Type,
		Key:           n.Key,
		Props:         n.Props,
		State:         n.State,
		Ref:           n.Ref,
		Subscriptions: n.Subscriptions,
		MemoCache:     n.MemoCache,
		Element:       n.Element,
		Alternate:     n,
	}
	n.Alternate = next
	return next
}

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// --- Roots ---

// TreeRoot is a handle for one independent tree. Implemented by *Root (thin
// wrapper) and *Node (direct).
type TreeRoot interface {
	CurrentNode() *Node
}

// Root is the thin wrapper form of a tree root handle.
type Root struct {
	Current *Node
}

// CurrentNode returns the current top node, or nil.
func (r *Root) CurrentNode() *Node {
	if r == nil {
		return nil
	}
	return r.Current
}

// stateSlots returns the node's state list, or nil when its state is not a
// slot list.
func stateSlots(n *Node) *StateSlot {
	if n == nil {
		return nil
	}
	s, _ := n.State.(*StateSlot)
	return s
}

// isRootMounted reports whether a root anchor renders something and is not
// waiting on hydration.
func isRootMounted(n *Node) bool {
	if n == nil {
		return false
	}
	switch s := n.State.(type) {
	case *RootState:
		return s != nil && s.Element != nil && !s.Dehydrated
	case RootState:
		return s.Element != nil && !s.Dehydrated
	default:
		return false
	}
}
