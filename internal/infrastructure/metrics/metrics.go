package metrics

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/pkg/amount"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_stream",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salary_stream",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	reallocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_stream",
			Subsystem: "loan",
			Name:      "reallocations_total",
			Help:      "Outbound flow recomputations by outcome.",
		},
		[]string{"outcome"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salary_stream",
			Subsystem: "loan",
			Name:      "transitions_total",
			Help:      "Loan lifecycle transitions.",
		},
		[]string{"from", "to"},
	)

	outstanding = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salary_stream",
			Subsystem: "loan",
			Name:      "outstanding_amount",
			Help:      "Sum of amount remaining over active loans, in smallest token units (approximate).",
		},
	)

	activeLoans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salary_stream",
			Subsystem: "loan",
			Name:      "active",
			Help:      "Number of active loans at the last snapshot.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		reallocations,
		transitions,
		outstanding,
		activeLoans,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Loans records loan usecase events.
type Loans struct{}

func (Loans) Reallocated(o loan.Outcome) { reallocations.WithLabelValues(string(o)).Inc() }

func (Loans) Transitioned(from, to loan.State) {
	transitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordOutstanding publishes a snapshot. Amounts above 2^53 lose precision.
func RecordOutstanding(active int, total amount.Amount) {
	f, _ := new(big.Float).SetInt(total.Big()).Float64()
	outstanding.Set(f)
	activeLoans.Set(float64(active))
}

// Middleware counts requests by route template so ids do not explode label cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
