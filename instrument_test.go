package rescan

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

// --- Hook ---

func TestHookSubscribeReplaysRenderers(t *testing.T) {
	h := NewHook()
	h.Inject(Renderer{Name: "dom", Version: "1.0"})

	var got []Renderer
	unsub, err := h.Subscribe(HookObserver{OnInject: func(r Renderer) { got = append(got, r) }})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 1 || got[0].Name != "dom" {
		t.Errorf("replayed = %+v", got)
	}

	h.Inject(Renderer{Name: "canvas"})
	if len(got) != 2 || got[1].ID != 2 {
		t.Errorf("after inject = %+v", got)
	}

	unsub()
	h.Inject(Renderer{Name: "third"})
	if len(got) != 2 {
		t.Error("observer called after unsubscribe")
	}
}

func TestHookSealed(t *testing.T) {
	h := NewHook()
	h.Seal()
	if _, err := h.Subscribe(HookObserver{}); !errors.Is(err, ErrHookSealed) {
		t.Errorf("err = %v, want ErrHookSealed", err)
	}
}

func TestHookObserverOrder(t *testing.T) {
	h := NewHook()
	var order []int
	for i := range 3 {
		if _, err := h.Subscribe(HookObserver{
			OnCommitRoot: func(int, TreeRoot, int) { order = append(order, i) },
		}); err != nil {
			t.Fatal(err)
		}
	}
	h.CommitRoot(1, nil, 0)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

// --- Engine ---

func TestNewEngineInstallsSyntheticHook(t *testing.T) {
	e := newTestEngine()
	if !e.Hook().Synthetic() {
		t.Error("nil hook should produce a synthetic hook")
	}
	if !e.Subscribed() {
		t.Error("engine should be subscribed")
	}
	e.Close()
	if e.Subscribed() {
		t.Error("engine still subscribed after Close")
	}
}

func TestNewEngineSealedHookLogsAndFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := NewHook()
	h.Seal()

	e := NewEngine(h, WithLogger(logger), WithFrameRate(fixedFPS))
	if e.Subscribed() {
		t.Error("engine subscribed to a sealed hook")
	}
	if !strings.Contains(buf.String(), "subscription refused") {
		t.Errorf("log = %q, want a subscription warning", buf.String())
	}

	// Direct feeding still works.
	rec := &recorder{}
	e.RegisterInstance(nil, rec.callbacks(false))
	e.Commit(&Root{Current: anchor(fn("App"))})
	if len(rec.take()) != 2 {
		t.Error("direct commit produced no records")
	}
}

func TestEnginesAreIndependent(t *testing.T) {
	h := NewHook()
	e1 := NewEngine(h, WithFrameRate(fixedFPS))
	e2 := NewEngine(h, WithFrameRate(fixedFPS))
	r1, r2 := &recorder{}, &recorder{}
	e1.RegisterInstance(nil, r1.callbacks(false))
	e2.RegisterInstance(nil, r2.callbacks(false))

	h.CommitRoot(1, &Root{Current: anchor(fn("App"))}, 0)
	a, b := r1.take(), r2.take()
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("records = %d/%d, want 2/2", len(a), len(b))
	}
	if e1.Registry() == e2.Registry() {
		t.Error("engines share a registry")
	}
}

// --- Instances ---

func TestRegisterInstanceOnActive(t *testing.T) {
	e := newTestEngine()
	active := 0
	e.RegisterInstance(nil, Callbacks{OnActive: func() { active++ }})
	if active != 0 {
		t.Fatalf("OnActive before any renderer = %d", active)
	}
	e.Hook().Inject(Renderer{Name: "dom"})
	if active != 1 {
		t.Errorf("OnActive after inject = %d, want 1", active)
	}

	late := 0
	e.RegisterInstance(nil, Callbacks{OnActive: func() { late++ }})
	if late != 1 {
		t.Errorf("late registration OnActive = %d, want 1", late)
	}
}

func TestRegisterInstancePredicate(t *testing.T) {
	e := newTestEngine()
	comps, all := &recorder{}, &recorder{}
	e.RegisterInstance(IsComposite, comps.callbacks(false))
	e.RegisterInstance(nil, all.callbacks(false))

	e.Commit(&Root{Current: anchor(fn("App", host("div", fn("Button"))))})

	equalSummary(t, comps.take(), []string{"mount:App", "mount:Button"})
	if n := len(all.take()); n != 4 {
		t.Errorf("unfiltered records = %d, want 4", n)
	}
}

func TestInstanceUnregister(t *testing.T) {
	e := newTestEngine()
	rec := &recorder{}
	inst := e.RegisterInstance(nil, rec.callbacks(false))
	root := &Root{Current: anchor(fn("App"))}
	e.Commit(root)
	rec.take()

	inst.Unregister()
	root.Current = regen(root.Current)
	root.Current.Child.Flags = FlagPerformedWork
	e.Commit(root)
	if got := rec.take(); len(got) != 0 {
		t.Errorf("records after Unregister = %v", summary(got))
	}
}

func TestRenderFields(t *testing.T) {
	e := newTestEngine()
	rec := &recorder{}
	e.RegisterInstance(IsComposite, rec.callbacks(false))

	app := fn("App", host("div"))
	app.TotalTime = 8 * 1e6
	app.Child.TotalTime = 3 * 1e6
	app.MemoCache = []any{}
	app.Flags |= FlagPlacement
	e.Commit(&Root{Current: anchor(app)})

	got := rec.take()
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	r := got[0]
	if r.Kind != KindFunction || r.Count != 1 || r.FrameRate != 60 {
		t.Errorf("record = %+v", r)
	}
	if r.SelfTime != 5*1e6 {
		t.Errorf("SelfTime = %v, want 5ms", r.SelfTime)
	}
	if !r.DidMutate || !r.IsMemoCompiled {
		t.Errorf("DidMutate/IsMemoCompiled = %v/%v, want true/true", r.DidMutate, r.IsMemoCompiled)
	}
}
