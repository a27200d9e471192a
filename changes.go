package rescan

import (
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ErrMalformedSubscription is returned when a node's subscription list
// cannot be walked. Only the context contribution of that node is lost.
var ErrMalformedSubscription = errors.New("rescan: malformed subscription list")

// ChangeKind classifies an itemized change.
type ChangeKind uint8

const (
	ChangeProp    ChangeKind = iota // primitive prop value changed
	ChangeState                     // state slot changed
	ChangeContext                   // subscribed value changed
	ChangeMemo                      // reference-typed prop memoization status
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeProp:
		return "prop"
	case ChangeState:
		return "state"
	case ChangeContext:
		return "context"
	case ChangeMemo:
		return "memo"
	default:
		return "unknown"
	}
}

// MemoStatus tells whether a reference-typed prop kept its identity.
type MemoStatus uint8

const (
	MemoNone       MemoStatus = iota // not a memo change
	MemoMemoized                     // same reference as the previous commit
	MemoUnmemoized                   // new reference
)

// Change is one itemized difference between a node and its alternate.
type Change struct {
	Kind      ChangeKind
	Name      string
	Value     any
	PrevValue any
	Memo      MemoStatus
}

// --- Work and mutation ---

// DidPerformWork reports whether n did work in this commit. Component-like
// kinds carry an explicit bit; everything else is judged by whether its
// committed values changed identity.
func DidPerformWork(n *Node) bool {
	switch n.Kind {
	case KindFunction, KindClass, KindContextConsumer, KindForwardRef, KindMemo, KindSimpleMemo:
		return n.Flags&FlagPerformedWork != 0
	}
	prev := n.Alternate
	if prev == nil {
		return true
	}
	return !sameRef(prev.Props, n.Props) ||
		!sameRef(prev.State, n.State) ||
		!sameRef(prev.Ref, n.Ref)
}

// DidMutateOutput reports whether n or any descendant changed what is on
// screen in this commit.
func DidMutateOutput(n *Node) bool {
	const mask = OutputMutationMask | FlagCloned
	return n.Flags&mask != 0 || n.SubtreeFlags&mask != 0
}

// IsMemoCompiled reports whether the node carries a compiler memo cache.
func IsMemoCompiled(n *Node) bool {
	return n.MemoCache != nil
}

// SelfTime is the node's total time minus its direct children's total time.
// Subtraction stops as soon as nothing is left, so the result is never
// negative and never exceeds the node's own total.
func SelfTime(n *Node) time.Duration {
	total := n.TotalTime
	if total <= 0 {
		return 0
	}
	self := total
	for c := n.Child; c != nil && self > 0; c = c.Sibling {
		self -= c.TotalTime
	}
	return max(self, 0)
}

// --- Itemized changes ---

// ItemizedChanges returns prop, state and context changes of n against its
// alternate. When the subscription list is malformed the context changes are
// left out and the error is returned with the rest.
func ItemizedChanges(n *Node) ([]Change, error) {
	changes := PropChanges(n)
	changes = append(changes, StateChanges(n)...)
	ctx, err := ContextChanges(n)
	if err != nil {
		return changes, err
	}
	return append(changes, ctx...), nil
}

// PropChanges compares committed props key by key. Primitive values produce
// a ChangeProp when unequal; reference-typed values produce a ChangeMemo that
// records whether the reference was kept.
func PropChanges(n *Node) []Change {
	var prev Props
	if n.Alternate != nil {
		prev = n.Alternate.Props
	}
	next := n.Props
	if sameRef(prev, next) {
		return nil
	}
	var changes []Change
	visit := func(name string) {
		if name == "children" {
			return
		}
		pv, nv := prev[name], next[name]
		if isReferenceValue(pv) || isReferenceValue(nv) {
			status := MemoUnmemoized
			if sameRef(pv, nv) {
				status = MemoMemoized
			}
			changes = append(changes, Change{Kind: ChangeMemo, Name: name, Value: nv, PrevValue: pv, Memo: status})
			return
		}
		if !objectIs(pv, nv) {
			changes = append(changes, Change{Kind: ChangeProp, Name: name, Value: nv, PrevValue: pv})
		}
	}
	for name := range next {
		visit(name)
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			visit(name)
		}
	}
	sortChanges(changes)
	return changes
}

// StateChanges compares state slots by position.
func StateChanges(n *Node) []Change {
	next := stateSlots(n)
	var prev *StateSlot
	if n.Alternate != nil {
		prev = stateSlots(n.Alternate)
		if prev == next {
			return nil
		}
	}
	var changes []Change
	for i := 0; next != nil; i++ {
		var pv any
		if prev != nil {
			pv = prev.Value
			prev = prev.Next
		}
		if !objectIs(pv, next.Value) {
			changes = append(changes, Change{Kind: ChangeState, Name: strconv.Itoa(i), Value: next.Value, PrevValue: pv})
		}
		next = next.Next
	}
	return changes
}

// ContextChanges reports one change per subscription source whose value
// differs from the alternate's value for the same source. Sources are
// deduplicated; the first entry for a source wins.
func ContextChanges(n *Node) ([]Change, error) {
	if len(n.Subscriptions) == 0 || n.Alternate == nil {
		return nil, nil
	}
	next, err := subscriptionValues(n.Subscriptions)
	if err != nil {
		return nil, err
	}
	prev, err := subscriptionValues(n.Alternate.Subscriptions)
	if err != nil {
		return nil, err
	}
	var changes []Change
	for _, e := range next {
		pv, ok := lookupSource(prev, e.Source)
		if !ok {
			continue
		}
		if !objectIs(pv, e.Value) {
			changes = append(changes, Change{Kind: ChangeContext, Name: e.Source.Name, Value: e.Value, PrevValue: pv})
		}
	}
	return changes, nil
}

func subscriptionValues(subs []Subscription) ([]Subscription, error) {
	out := make([]Subscription, 0, len(subs))
	for i, s := range subs {
		if s.Source == nil {
			return nil, errors.Wrapf(ErrMalformedSubscription, "entry %d has no source", i)
		}
		if _, dup := lookupSource(out, s.Source); dup {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func lookupSource(subs []Subscription, src *Context) (any, bool) {
	for _, s := range subs {
		if s.Source == src {
			return s.Value, true
		}
	}
	return nil, false
}

// sortChanges orders changes by name so that output does not depend on map
// iteration order.
func sortChanges(changes []Change) {
	slices.SortFunc(changes, func(a, b Change) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// --- Equality ---

// objectIs is identity equality for primitives: NaN equals NaN and +0 does
// not equal -0. Reference-typed values compare by reference.
func objectIs(a, b any) bool {
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			if math.IsNaN(fa) && math.IsNaN(fb) {
				return true
			}
			return fa == fb && math.Signbit(fa) == math.Signbit(fb)
		}
		return false
	}
	if fa, ok := a.(float32); ok {
		if fb, ok := b.(float32); ok {
			return objectIs(float64(fa), float64(fb))
		}
		return false
	}
	return sameRef(a, b)
}

// sameRef compares a and b by identity: maps, slices, funcs and channels by
// the pointer they wrap, everything comparable with ==.
func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		// reflect reports the code pointer for funcs, which closures of one
		// literal share. The interface data word is the closure itself.
		return ifaceData(a) == ifaceData(b)
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	}
	if va.Comparable() {
		return a == b
	}
	return false
}

func ifaceData(v any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
}

// isReferenceValue reports whether v is a function or object-like value,
// i.e. one whose identity matters for memoization.
func isReferenceValue(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Pointer, reflect.Struct, reflect.Chan, reflect.Array:
		return true
	default:
		return false
	}
}
