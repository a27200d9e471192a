package rescan

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountsRenders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := newTestEngine()
	m.Attach(e, true)

	a := anchor(fn("App", host("div", fn("Button"))))
	root := &Root{Current: a}
	e.Commit(root)

	next := regen(a)
	btn := find(next, "Button")
	btn.Flags = FlagPerformedWork | FlagUpdate
	btn.Props = Props{"label": "go"}
	root.Current = next
	e.Commit(root)

	if got := testutil.ToFloat64(m.renders.WithLabelValues("Button", "mount")); got != 1 {
		t.Errorf("Button mounts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.renders.WithLabelValues("Button", "update")); got != 1 {
		t.Errorf("Button updates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("Button")); got != 1 {
		t.Errorf("Button mutations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.changes.WithLabelValues("Button", "prop")); got != 1 {
		t.Errorf("Button prop changes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.commits); got != 2 {
		t.Errorf("commits = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.selfTime); n != 2 {
		t.Errorf("self time series = %d, want 2 (App, Button)", n)
	}
}

func TestMetricsSkipsHostNodes(t *testing.T) {
	m := NewMetrics(nil)
	e := newTestEngine()
	m.Attach(e, false)
	e.Commit(&Root{Current: anchor(host("div"))})
	if n := testutil.CollectAndCount(m.renders); n != 0 {
		t.Errorf("render series = %d, want 0", n)
	}
}
