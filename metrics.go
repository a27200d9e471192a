package rescan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports render records as Prometheus series. Attach it to an
// engine like any other consumer.
type Metrics struct {
	renders   *prometheus.CounterVec
	selfTime  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	changes   *prometheus.CounterVec
	commits   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rescan",
			Name:      "renders_total",
			Help:      "Render records by component and phase.",
		}, []string{"component", "phase"}),
		selfTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rescan",
			Name:      "self_time_seconds",
			Help:      "Time a component spent rendering, excluding its children.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1},
		}, []string{"component"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rescan",
			Name:      "output_mutations_total",
			Help:      "Renders that changed host output.",
		}, []string{"component"}),
		changes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rescan",
			Name:      "changes_total",
			Help:      "Itemized input changes by component and kind.",
		}, []string{"component", "kind"}),
		commits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "rescan",
			Name:      "commits_total",
			Help:      "Observed commit batches.",
		}),
	}
}

// Callbacks returns the consumer configuration feeding m.
func (m *Metrics) Callbacks(trackChanges bool) Callbacks {
	return Callbacks{
		OnCommitFinish: m.commits.Inc,
		OnRender:       m.observe,
		TrackChanges:   trackChanges,
	}
}

// Attach registers m on e for composite nodes.
func (m *Metrics) Attach(e *Engine, trackChanges bool) *Instance {
	return e.RegisterInstance(IsComposite, m.Callbacks(trackChanges))
}

func (m *Metrics) observe(_ *Node, renders []Render) {
	for _, r := range renders {
		m.renders.WithLabelValues(r.DisplayName, r.Phase.String()).Add(float64(r.Count))
		if r.Phase == PhaseUnmount {
			continue
		}
		m.selfTime.WithLabelValues(r.DisplayName).Observe(r.SelfTime.Seconds())
		if r.DidMutate {
			m.mutations.WithLabelValues(r.DisplayName).Inc()
		}
		for _, c := range r.Changes {
			m.changes.WithLabelValues(r.DisplayName, c.Kind.String()).Inc()
		}
	}
}
