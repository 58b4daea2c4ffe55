// Package metrics defines and registers all custom Prometheus metrics for the
// blood bank donor registry. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bloodbank"

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - outcome: "created" (new donor inserted) or "existing" (idempotent
//     lookup of an already registered phone, including lost insert races)
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// DonationsTotal counts donation submissions by outcome.
// Label:
//   - outcome: "accepted" (positive amount applied) or "rejected"
//     (non-positive or non-numeric amount, no state change)
var DonationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donations_total",
		Help:      "Total number of donation submissions, by outcome.",
	},
	[]string{"outcome"},
)

// DonationAmountTotal accumulates the sum of all accepted donation amounts.
var DonationAmountTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donation_amount_total",
		Help:      "Running sum of all accepted donation amounts.",
	},
)

// SearchCacheTotal counts result-page cache lookups.
// Label:
//   - result: "hit" (page served from cache) or "miss" (store queried)
var SearchCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_cache_total",
		Help:      "Total number of search cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// SearchDuration measures how long a compatibility query takes end-to-end,
// including cache lookups and the store round trip.
var SearchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of compatibility searches from filter compilation to result page.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)
