// Package metrics defines and registers all custom Prometheus metrics for the
// weekly planner API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init via promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planner"

// ── Planner metrics ───────────────────────────────────────────────────────────

// MutationsTotal counts workspace mutations.
// Labels:
//   - entity: "role", "objective" or "activity"
//   - op: "add", "edit", "delete" or "toggle"
//   - mode: the session mode, "guest" or "user"
//   - result: "ok", "invalid", "not_found", "remote_error" or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of planner mutations, by entity, operation, mode and result.",
	},
	[]string{"entity", "op", "mode", "result"},
)

// MutationDuration measures a mutation from validation to store update,
// including the remote round trip in user mode.
var MutationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_duration_seconds",
		Help:      "Duration of planner mutations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"entity", "op", "mode"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SessionEventsTotal counts sign-ins and sign-outs.
// Labels:
//   - kind: "SIGNED_IN" or "SIGNED_OUT"
//   - mode: "guest" or "user"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session changes, by kind and mode.",
	},
	[]string{"kind", "mode"},
)

// ── Export metrics ────────────────────────────────────────────────────────────

// ExportsTotal counts PDF exports.
// Label:
//   - result: "ok" or "error"
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of weekly PDF exports, by result.",
	},
	[]string{"result"},
)

// ExportDuration measures rendering plus printing of one export.
var ExportDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of weekly PDF exports.",
		Buckets:   []float64{.25, .5, 1, 2, 5, 10, 30},
	},
)

var workspacesOnce sync.Once

// RegisterOpenWorkspaces exposes the live workspace count as a gauge. Only
// the first call registers; later calls are ignored.
func RegisterOpenWorkspaces(open func() int) {
	workspacesOnce.Do(func() {
		promauto.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_workspaces",
				Help:      "Current number of in-memory session workspaces.",
			},
			func() float64 { return float64(open()) },
		)
	})
}
