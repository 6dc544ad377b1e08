package metrics

import (
	"errors"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "awaken"

// Metrics implements providers.Observer and core.Recorder.
type Metrics struct {
	pagesFetched   *prometheus.CounterVec
	recordsFetched *prometheus.CounterVec
	retries        *prometheus.CounterVec
	branches       *prometheus.CounterVec

	recordsDropped *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance and registers every collector with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "pages_fetched_total",
			Help:      "Pages read from upstream providers",
		}, []string{"provider", "branch"}),
		recordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "records_fetched_total",
			Help:      "Raw records read from upstream providers",
		}, []string{"provider", "branch"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "retries_total",
			Help:      "Page requests retried after a transient failure",
		}, []string{"provider", "branch"}),
		branches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "branches_total",
			Help:      "Finished query branches by outcome",
		}, []string{"provider", "branch", "outcome"}),
		recordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_dropped_total",
			Help:      "Records that could not be mapped to a canonical transaction",
		}, []string{"chain"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetches_total",
			Help:      "Wallet history fetches by outcome",
		}, []string{"chain", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time to fetch and merge one wallet history",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"chain"}),
	}

	err := errors.Join(
		reg.Register(m.pagesFetched),
		reg.Register(m.recordsFetched),
		reg.Register(m.retries),
		reg.Register(m.branches),
		reg.Register(m.recordsDropped),
		reg.Register(m.fetches),
		reg.Register(m.fetchDuration),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Branch outcomes.
const (
	OutcomeComplete  = "complete"
	OutcomePageLimit = "page_limit"
	OutcomeFailed    = "failed"
)

func (m *Metrics) PageFetched(provider, branch string, records int) {
	m.pagesFetched.WithLabelValues(provider, branch).Inc()
	m.recordsFetched.WithLabelValues(provider, branch).Add(float64(records))
}

func (m *Metrics) RequestRetried(provider, branch string) {
	m.retries.WithLabelValues(provider, branch).Inc()
}

func (m *Metrics) BranchFinished(provider, branch string, status providers.BranchStatus) {
	m.branches.WithLabelValues(provider, branch, branchOutcome(status)).Inc()
}

func branchOutcome(status providers.BranchStatus) string {
	switch {
	case status.Failed:
		return OutcomeFailed
	case !status.Complete:
		return OutcomePageLimit
	default:
		return OutcomeComplete
	}
}

// FetchCompleted records one finished wallet fetch.
func (m *Metrics) FetchCompleted(chain, outcome string, duration time.Duration, dropped int) {
	m.fetches.WithLabelValues(chain, outcome).Inc()
	m.fetchDuration.WithLabelValues(chain).Observe(duration.Seconds())
	if dropped > 0 {
		m.recordsDropped.WithLabelValues(chain).Add(float64(dropped))
	}
}
