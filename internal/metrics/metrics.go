// Package metrics defines and registers all custom Prometheus metrics for
// the microbiology portal. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register themselves with the default Prometheus registry at
// import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "microbio"

// ── Case metrics ──────────────────────────────────────────────────────────────

// CasesSubmittedTotal counts accepted submissions.
// Label:
//   - assignment: "explicit" (submitter chose the technician) or "auto"
var CasesSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cases_submitted_total",
		Help:      "Total number of cases submitted, by assignment mode.",
	},
	[]string{"assignment"},
)

// SubmissionsRejectedTotal counts submissions that failed a precondition.
// Label:
//   - reason: short description (e.g. "no_technicians")
var SubmissionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_rejected_total",
		Help:      "Total number of rejected case submissions.",
	},
	[]string{"reason"},
)

// CasesClaimedTotal counts successful technician self-assignments.
var CasesClaimedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cases_claimed_total",
		Help:      "Total number of cases claimed by technicians.",
	},
)

// CasesCompletedTotal counts completed cases.
// Label:
//   - pdf: "yes" when a microbiology PDF was attached at completion
var CasesCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cases_completed_total",
		Help:      "Total number of cases completed with a report.",
	},
	[]string{"pdf"},
)

// TransitionErrorsTotal counts state-changing operations refused because the
// case was not in the required state.
// Label:
//   - reason: "invalid_transition" or "not_eligible"
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of refused case state transitions.",
	},
	[]string{"reason"},
)

// HistoryWriteFailuresTotal counts audit-trail writes that failed. History
// is best-effort, so these never surface to the caller.
var HistoryWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_write_failures_total",
		Help:      "Total number of failed case history writes (best-effort, swallowed).",
	},
)

// PendingQueueDepth tracks the pending-case count per technician as observed
// by the allocator on each auto-assign decision.
// Label:
//   - technician: technician username
var PendingQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_queue_depth",
		Help:      "Pending cases per technician at the last allocation decision.",
	},
	[]string{"technician"},
)

// ── Export metrics ────────────────────────────────────────────────────────────

// ExportsGeneratedTotal counts generated export documents.
// Label:
//   - format: "csv" or "pdf"
var ExportsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_generated_total",
		Help:      "Total number of export documents generated.",
	},
	[]string{"format"},
)

// ReportPDFRenderDuration measures how long rendering a laboratory report
// PDF takes.
var ReportPDFRenderDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_pdf_render_duration_seconds",
		Help:      "Duration of laboratory report PDF rendering.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
