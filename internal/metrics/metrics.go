// Package metrics defines the Prometheus instruments the server exports and
// the /metrics and /healthz handlers.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument. Create one per registry with New.
type Metrics struct {
	WagersPlaced  prometheus.Counter
	StakeCents    prometheus.Counter
	BetsSettled   *prometheus.CounterVec
	DebtsCreated  prometheus.Counter
	DebtsResolved prometheus.Counter
	DustCents     prometheus.Counter
	InvitesPurged prometheus.Counter
	LockWait      prometheus.Histogram
	RPCDuration   *prometheus.HistogramVec
	registry      prometheus.Registerer
	gatherer      prometheus.Gatherer
}

// New creates the instruments and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		WagersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidepot_wagers_placed_total",
			Help: "Wagers recorded.",
		}),
		StakeCents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidepot_stake_cents_total",
			Help: "Sum of recorded stakes in cents.",
		}),
		BetsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sidepot_bets_settled_total",
			Help: "Bets settled, by kind (paid, no_winners).",
		}, []string{"kind"}),
		DebtsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidepot_debts_created_total",
			Help: "Debts created by settlement.",
		}),
		DebtsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidepot_debts_resolved_total",
			Help: "Debts moved from open to resolved.",
		}),
		DustCents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidepot_payout_dust_cents_total",
			Help: "Cents left unallocated by floor rounding of payouts.",
		}),
		InvitesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sidepot_invites_purged_total",
			Help: "Expired unused invites deleted by the sweeper.",
		}),
		LockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sidepot_lock_wait_seconds",
			Help:    "Time spent waiting for group and bet locks.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sidepot_rpc_duration_seconds",
			Help:    "RPC latency by procedure and result code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		registry: reg,
		gatherer: reg,
	}

	reg.MustRegister(
		m.WagersPlaced, m.StakeCents, m.BetsSettled, m.DebtsCreated, m.DebtsResolved,
		m.DustCents, m.InvitesPurged, m.LockWait, m.RPCDuration,
	)
	return m
}

// Discard returns instruments registered on a private registry. Useful as a
// default when the caller does not export metrics.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}

// HealthFunc reports whether a dependency is usable.
type HealthFunc func(ctx context.Context) error

// Register mounts /metrics and /healthz on mux.
func (m *Metrics) Register(mux *http.ServeMux, healthFn HealthFunc) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{Registry: m.registry}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "unhealthy: %v", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
