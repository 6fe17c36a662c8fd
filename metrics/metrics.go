package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/scitags/sockdiag-go/netlink"
	"github.com/scitags/sockdiag-go/types"
)

// Metric labels (note these are **always** strings):
//
//	family: the address family as a number (i.e. 2 for AF_INET)
//	states: the queried states as returned by types.StatesString
//	kind: the class of a failure (truncated, protocol, transport or other)
var (
	queryLabels   = []string{"family"}
	failureLabels = []string{"family", "kind"}
	socketLabels  = []string{"family", "states"}
)

type collectors struct {
	Queries  *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Sockets  *prometheus.GaugeVec
	Duration *prometheus.HistogramVec
}

func newCollectors() *collectors {
	return &collectors{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sockdiag_queries_total",
			Help: "Number of sock_diag queries issued",
		}, queryLabels),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sockdiag_query_failures_total",
			Help: "Number of failed sock_diag queries",
		}, failureLabels),
		Sockets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sockdiag_sockets",
			Help: "Number of sockets returned by the last successful query",
		}, socketLabels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sockdiag_query_duration_seconds",
			Help:    "Time taken by sock_diag queries [s]",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, queryLabels),
	}
}

func (c *collectors) register(reg prometheus.Registerer, logger *slog.Logger) error {
	v := reflect.ValueOf(*c)

	i := 0
	for i = 0; i < v.NumField(); i++ {
		vv, ok := v.Field(i).Interface().(prometheus.Collector)
		if !ok {
			return fmt.Errorf("error casting the interface for index %d", i)
		}
		if err := reg.Register(vv); err != nil {
			return fmt.Errorf("error registering index %d: %w", i, err)
		}
	}
	logger.Log(context.Background(), types.LevelTrace, "registered collectors", "i", i)

	return nil
}

// Metrics describes the outcome of sock_diag queries. Collectors live in
// their own non-global registry.
type Metrics struct {
	Config

	logger *slog.Logger
	reg    *prometheus.Registry
	c      *collectors
}

func (m *Metrics) String() string {
	return "Prometheus"
}

func New(config *Config) (*Metrics, error) {
	if config == nil {
		config = &DefaultConfig
	}

	m := Metrics{Config: *config}

	if m.Log {
		m.logger = slog.Default().With("t", "metrics")
	} else {
		m.logger = slog.New(slog.DiscardHandler)
	}

	// Create a non-global registry.
	m.reg = prometheus.NewRegistry()
	m.c = newCollectors()

	if err := m.c.register(m.reg, m.logger); err != nil {
		return nil, fmt.Errorf("error registering the metrics: %w", err)
	}

	return &m, nil
}

// Registry exposes the underlying registry so it can be served or gathered.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Observe records a single query returning n sockets after dur. A non-nil
// err marks the query as failed and leaves the socket gauge untouched.
func (m *Metrics) Observe(family uint8, states uint32, n int, dur time.Duration, err error) {
	fam := fmt.Sprint(family)

	m.c.Queries.WithLabelValues(fam).Inc()
	m.c.Duration.WithLabelValues(fam).Observe(dur.Seconds())

	if err != nil {
		kind := FailureKind(err)
		m.logger.Debug("observed a failed query", "family", fam, "kind", kind, "err", err)
		m.c.Failures.WithLabelValues(fam, kind).Inc()
		return
	}

	m.c.Sockets.WithLabelValues(fam, types.StatesString(states)).Set(float64(n))
}

// FailureKind classifies a query error for the kind label.
func FailureKind(err error) string {
	var (
		pErr *netlink.ProtocolError
		tErr *netlink.TransportError
	)

	switch {
	case errors.Is(err, netlink.ErrTruncatedMessage):
		return "truncated"
	case errors.As(err, &pErr):
		return "protocol"
	case errors.As(err, &tErr):
		return "transport"
	default:
		return "other"
	}
}

// WriteText renders every metric in the text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	mfs, err := m.reg.Gather()
	if err != nil {
		return fmt.Errorf("error gathering metrics: %w", err)
	}

	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("error writing metric %q: %w", mf.GetName(), err)
		}
	}

	return nil
}
