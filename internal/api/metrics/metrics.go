// Package metrics defines the custom Prometheus metrics of the composer API.
// Metrics are registered with the default registry on package init via promauto
// and exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "composer"

// ── Dispatch metrics ──────────────────────────────────────────────────────────

// SweepsTotal counts dispatcher sweeps.
// Label:
//   - result: "ok" or "error" (due posts could not be loaded)
var SweepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_sweeps_total",
		Help:      "Total number of dispatch sweeps run.",
	},
	[]string{"result"},
)

// DispatchOutcomesTotal counts per-post sweep outcomes.
// Label:
//   - outcome: "posted", "no_connection", "refresh_failed", "delivery_failed", "recovered"
var DispatchOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_outcomes_total",
		Help:      "Total number of scheduled post delivery attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SweepDuration measures one sweep end-to-end.
var SweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_sweep_duration_seconds",
		Help:      "Duration of a dispatch sweep.",
		Buckets:   prometheus.DefBuckets,
	},
)

// TokenRefreshesTotal counts platform credential refreshes.
// Label:
//   - result: "ok", "failed", "persist_failed"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of platform token refreshes, by result.",
	},
	[]string{"result"},
)

// ── Post metrics ──────────────────────────────────────────────────────────────

// PostsCreatedTotal counts stored posts.
// Label:
//   - status: initial status ("draft", "scheduled", "posted")
var PostsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of posts created, by initial status.",
	},
	[]string{"status"},
)

// DirectPublishTotal counts "post now" requests.
// Label:
//   - result: "ok", "reconnect", "failed"
var DirectPublishTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "direct_publish_total",
		Help:      "Total number of direct publish requests, by result.",
	},
	[]string{"result"},
)

// ── Generation metrics ────────────────────────────────────────────────────────

// CompletionsTotal counts calls to the generative-text service.
// Labels:
//   - kind: "generate" or "analyze"
//   - result: "ok", "error", or "fallback" (analysis reply could not be parsed)
var CompletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completions_total",
		Help:      "Total number of text completions requested, by kind and result.",
	},
	[]string{"kind", "result"},
)
