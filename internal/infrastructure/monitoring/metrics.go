package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CommandsTotal.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown"
)

// Transfer directions for TransferBytes.
const (
	DirectionGet = "get"
	DirectionPut = "put"
)

// Metrics holds the shell's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Shell metrics
	CommandsTotal *prometheus.CounterVec
	Connected     prometheus.Gauge
	TransferBytes *prometheus.CounterVec

	// Remote service metrics
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Endpoint metrics
	HTTPRequests *prometheus.CounterVec

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbxshell_commands_total",
				Help: "Commands evaluated by the shell",
			},
			[]string{"command", "outcome"},
		),
		Connected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dbxshell_connected",
				Help: "1 while a remote session is open",
			},
		),
		TransferBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbxshell_transfer_bytes_total",
				Help: "Bytes moved by get and put",
			},
			[]string{"direction"},
		),
		RemoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbxshell_remote_calls_total",
				Help: "Calls made to the remote storage API",
			},
			[]string{"op", "result"},
		),
		RemoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbxshell_remote_call_duration_seconds",
				Help:    "Remote storage API call latency",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"op"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbxshell_http_requests_total",
				Help: "Requests served by the metrics endpoint",
			},
			[]string{"path", "status"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "dbxshell_uptime_seconds",
			Help: "Seconds since the shell started",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// RecordCommand counts one evaluated command.
func (m *Metrics) RecordCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordRemoteCall records one remote API call.
func (m *Metrics) RecordRemoteCall(op, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(op, result).Inc()
	m.RemoteDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// AddTransfer adds n bytes in the given direction.
func (m *Metrics) AddTransfer(direction string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.TransferBytes.WithLabelValues(direction).Add(float64(n))
}

// SetConnected updates the connection gauge.
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

func (m *Metrics) recordHTTPRequest(path, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(path, status).Inc()
}
