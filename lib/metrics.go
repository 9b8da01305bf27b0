package lib

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the node in the form of prometheus metrics */

const metricsPattern = "/metrics"

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server   *http.Server         // the http prometheus server
	config   MetricsConfig        // the configuration
	registry *prometheus.Registry // metrics are registered per instance so tests may create many
	log      LoggerI              // the logger

	NodeMetrics   // general telemetry about the host
	VotingMetrics // contract telemetry
}

// NodeMetrics represents general telemetry for the host's health
type NodeMetrics struct {
	NodeStatus    prometheus.Gauge     // is the node alive?
	Height        prometheus.Gauge     // the current block height supplied to the contract
	ApplyDuration prometheus.Histogram // how long does applying a transaction take?
}

// VotingMetrics represents the telemetry of the voting contract
type VotingMetrics struct {
	VotesCast   *prometheus.CounterVec // accepted votes by choice
	Tally       *prometheus.GaugeVec   // current tally by choice
	Rejected    *prometheus.CounterVec // rejected transactions by message type and code
	RoundActive prometheus.Gauge       // 1 while the round accepts votes
	Rounds      prometheus.Counter     // number of rounds initialized
}

// NewMetricsServer() creates a new telemetry server
func NewMetricsServer(config MetricsConfig, log LoggerI) *Metrics {
	registry := prometheus.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m := &Metrics{
		server:   &http.Server{Addr: config.PrometheusAddress, Handler: mux},
		config:   config,
		registry: registry,
		log:      log,
		NodeMetrics: NodeMetrics{
			NodeStatus: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ballot_node_status",
				Help: "The node is alive and applying transactions",
			}),
			Height: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ballot_height",
				Help: "Current block height",
			}),
			ApplyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name: "ballot_tx_apply_seconds",
				Help: "Time to apply a transaction in seconds",
			}),
		},
		VotingMetrics: VotingMetrics{
			VotesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ballot_votes_cast_total",
				Help: "Accepted votes by choice",
			}, []string{"choice"}),
			Tally: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "ballot_tally",
				Help: "Current tally by choice",
			}, []string{"choice"}),
			Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ballot_tx_rejected_total",
				Help: "Rejected transactions by message type and error code",
			}, []string{"type", "code"}),
			RoundActive: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ballot_round_active",
				Help: "Round status (1 accepting votes, 0 otherwise)",
			}),
			Rounds: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ballot_rounds_total",
				Help: "Number of rounds initialized",
			}),
		},
	}
	registry.MustRegister(m.NodeStatus, m.Height, m.ApplyDuration, m.VotesCast, m.Tally, m.Rejected, m.RoundActive, m.Rounds)
	return m
}

// Start() starts the telemetry server
func (m *Metrics) Start() {
	if m == nil || !m.config.Enabled {
		return
	}
	m.NodeStatus.Set(1)
	go func() {
		m.log.Infof("Starting metrics server on %s", m.config.PrometheusAddress)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Errorf("Metrics server failed with err: %s", err.Error())
		}
	}()
}

// Stop() gracefully stops the telemetry server
func (m *Metrics) Stop() {
	if m == nil || !m.config.Enabled {
		return
	}
	m.NodeStatus.Set(0)
	if err := m.server.Shutdown(context.Background()); err != nil {
		m.log.Error(err.Error())
	}
}

// UpdateHeight() records the block height
func (m *Metrics) UpdateHeight(height uint64) {
	if m == nil {
		return
	}
	m.Height.Set(float64(height))
}

// UpdateTally() records the current tallies and whether the round is active
func (m *Metrics) UpdateTally(r *Results) {
	if m == nil || r == nil {
		return
	}
	m.Tally.WithLabelValues(string(ChoiceA)).Set(float64(r.A))
	m.Tally.WithLabelValues(string(ChoiceB)).Set(float64(r.B))
	if r.IsActive {
		m.RoundActive.Set(1)
	} else {
		m.RoundActive.Set(0)
	}
}

// AddVote() counts an accepted vote
func (m *Metrics) AddVote(c Choice) {
	if m == nil {
		return
	}
	m.VotesCast.WithLabelValues(string(c)).Inc()
}

// AddRound() counts an initialized round
func (m *Metrics) AddRound() {
	if m == nil {
		return
	}
	m.Rounds.Inc()
}

// AddRejected() counts a rejected transaction
func (m *Metrics) AddRejected(t MessageType, err ErrorI) {
	if m == nil || err == nil {
		return
	}
	m.Rejected.WithLabelValues(string(t), strconv.FormatUint(uint64(err.Code()), 10)).Inc()
}

// ObserveApply() records how long applying a transaction took
func (m *Metrics) ObserveApply(seconds float64) {
	if m == nil {
		return
	}
	m.ApplyDuration.Observe(seconds)
}
