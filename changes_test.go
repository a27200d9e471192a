package rescan

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

// --- Work and mutation ---

func TestDidPerformWork(t *testing.T) {
	comp := fn("App")
	if !DidPerformWork(comp) {
		t.Error("component with PerformedWork flag: want true")
	}
	comp.Flags = 0
	if DidPerformWork(comp) {
		t.Error("component without flag: want false")
	}

	div := host("div")
	if !DidPerformWork(div) {
		t.Error("fresh host node: want true")
	}
	next := div.NextGeneration()
	if DidPerformWork(next) {
		t.Error("host with unchanged props/state/ref: want false")
	}
	next.Ref = &element{}
	if !DidPerformWork(next) {
		t.Error("host with new ref: want true")
	}
}

func TestDidMutateOutput(t *testing.T) {
	tests := []struct {
		name    string
		flags   Flags
		subtree Flags
		want    bool
	}{
		{"none", 0, 0, false},
		{"performed work only", FlagPerformedWork, 0, false},
		{"placement", FlagPlacement, 0, true},
		{"update in subtree", 0, FlagUpdate, true},
		{"child deletion", FlagChildDeletion, 0, true},
		{"visibility", 0, FlagVisibility, true},
		{"cloned", FlagCloned, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Node{Flags: tt.flags, SubtreeFlags: tt.subtree}
			if got := DidMutateOutput(n); got != tt.want {
				t.Errorf("DidMutateOutput = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelfTime(t *testing.T) {
	tests := []struct {
		name     string
		total    time.Duration
		children []time.Duration
		want     time.Duration
	}{
		{"leaf", 5 * time.Millisecond, nil, 5 * time.Millisecond},
		{"children subtracted", 10 * time.Millisecond, []time.Duration{3 * time.Millisecond, 2 * time.Millisecond}, 5 * time.Millisecond},
		{"overlap clamps to zero", 4 * time.Millisecond, []time.Duration{3 * time.Millisecond, 3 * time.Millisecond}, 0},
		{"no total", 0, []time.Duration{time.Millisecond}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := fn("P")
			n.TotalTime = tt.total
			for _, d := range tt.children {
				c := fn("C")
				c.TotalTime = d
				n.AppendChild(c)
			}
			if got := SelfTime(n); got != tt.want {
				t.Errorf("SelfTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsMemoCompiled(t *testing.T) {
	n := fn("App")
	if IsMemoCompiled(n) {
		t.Error("no cache: want false")
	}
	n.MemoCache = []any{}
	if !IsMemoCompiled(n) {
		t.Error("with cache: want true")
	}
}

// --- Props ---

func TestPropChanges(t *testing.T) {
	handler := func() {}
	style := map[string]any{"color": "red"}
	prev := fn("Btn")
	prev.Props = Props{"label": "a", "count": 1, "onClick": handler, "style": style, "children": "x", "gone": true}
	n := prev.NextGeneration()
	n.Props = Props{"label": "a", "count": 2, "onClick": handler, "style": map[string]any{"color": "red"}, "children": "y"}

	got := PropChanges(n)
	want := []struct {
		kind ChangeKind
		name string
		memo MemoStatus
	}{
		{ChangeProp, "count", MemoNone},
		{ChangeProp, "gone", MemoNone},
		{ChangeMemo, "onClick", MemoMemoized},
		{ChangeMemo, "style", MemoUnmemoized},
	}
	if len(got) != len(want) {
		t.Fatalf("changes = %+v, want %d entries", got, len(want))
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Name != w.name || got[i].Memo != w.memo {
			t.Errorf("changes[%d] = %+v, want %v %s %v", i, got[i], w.kind, w.name, w.memo)
		}
	}
}

func TestPropChangesSameMapIsEmpty(t *testing.T) {
	prev := fn("Btn")
	prev.Props = Props{"a": 1}
	n := prev.NextGeneration()
	if got := PropChanges(n); got != nil {
		t.Errorf("changes = %+v, want nil", got)
	}
}

func TestPropChangesDistinctClosures(t *testing.T) {
	mk := func() func() { x := 0; return func() { x++ } }
	prev := fn("Btn")
	prev.Props = Props{"onClick": mk()}
	n := prev.NextGeneration()
	n.Props = Props{"onClick": mk()}

	got := PropChanges(n)
	if len(got) != 1 || got[0].Memo != MemoUnmemoized {
		t.Errorf("changes = %+v, want one unmemoized", got)
	}
}

// --- State ---

func TestStateChanges(t *testing.T) {
	prev := fn("Counter")
	prev.State = &StateSlot{Value: 1, Next: &StateSlot{Value: "x", Next: &StateSlot{Value: math.NaN()}}}
	n := prev.NextGeneration()
	n.State = &StateSlot{Value: 2, Next: &StateSlot{Value: "x", Next: &StateSlot{Value: math.NaN()}}}

	got := StateChanges(n)
	if len(got) != 1 {
		t.Fatalf("changes = %+v, want 1", got)
	}
	if got[0].Name != "0" || got[0].Value != 2 || got[0].PrevValue != 1 {
		t.Errorf("change = %+v", got[0])
	}
}

func TestStateChangesSameList(t *testing.T) {
	prev := fn("Counter")
	prev.State = &StateSlot{Value: 1}
	n := prev.NextGeneration()
	if got := StateChanges(n); got != nil {
		t.Errorf("changes = %+v, want nil", got)
	}
}

// --- Context ---

func TestContextChanges(t *testing.T) {
	theme, locale := &Context{Name: "Theme"}, &Context{Name: "Locale"}
	prev := fn("Page")
	prev.Subscriptions = []Subscription{{theme, "dark"}, {locale, "en"}}
	n := prev.NextGeneration()
	n.Subscriptions = []Subscription{{theme, "light"}, {theme, "ignored"}, {locale, "en"}}

	got, err := ContextChanges(n)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Theme" || got[0].Value != "light" || got[0].PrevValue != "dark" {
		t.Errorf("changes = %+v", got)
	}
}

func TestItemizedChangesMalformedSubscription(t *testing.T) {
	prev := fn("Page")
	prev.Props = Props{"a": 1}
	prev.Subscriptions = []Subscription{{Source: nil, Value: 1}}
	n := prev.NextGeneration()
	n.Props = Props{"a": 2}

	got, err := ItemizedChanges(n)
	if !errors.Is(err, ErrMalformedSubscription) {
		t.Fatalf("err = %v, want ErrMalformedSubscription", err)
	}
	if len(got) != 1 || got[0].Kind != ChangeProp {
		t.Errorf("changes = %+v, want the prop change to survive", got)
	}
}

// --- Equality ---

func TestObjectIs(t *testing.T) {
	p := &element{}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"NaN", math.NaN(), math.NaN(), true},
		{"signed zero", 0.0, math.Copysign(0, -1), false},
		{"same pointer", p, p, true},
		{"different pointers", p, &element{}, false},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"different types", 1, int64(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := objectIs(tt.a, tt.b); got != tt.want {
				t.Errorf("objectIs(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
