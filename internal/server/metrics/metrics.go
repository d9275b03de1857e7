// Package metrics exposes the bot's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Handshake metrics
	EnvelopesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govbot_envelopes_total",
			Help: "Wallet connector envelopes processed",
		},
		[]string{"action", "outcome"}, // outcome: "ok" or "rejected"
	)

	WalletsLinked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "govbot_wallets_linked_total",
			Help: "Successful wallet links",
		},
	)

	// Wizard metrics
	WizardEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govbot_wizard_entries_total",
			Help: "Wizard entry attempts",
		},
		[]string{"wizard", "outcome"}, // outcome: "ok", "denied" or "error"
	)

	WizardCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "govbot_wizard_completions_total",
			Help: "Wizards that reached their terminal step",
		},
		[]string{"wizard", "outcome"}, // outcome: "done" or "error"
	)

	// Governance metrics
	ProposalsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "govbot_proposals_created_total",
			Help: "Proposals persisted",
		},
	)

	VotesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "govbot_votes_recorded_total",
			Help: "Votes persisted (including overwrites)",
		},
	)

	// Oracle metrics
	OracleFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "govbot_oracle_failures_total",
			Help: "Balance reads that failed after retries",
		},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "govbot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
)
