package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	EventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alc_events_ingested_total",
			Help: "Evidence events appended to the log, by kind",
		},
		[]string{"kind"},
	)

	EventsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alc_events_rejected_total",
			Help: "Evidence events rejected before append, by reason",
		},
		[]string{"reason"},
	)

	Recomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alc_mastery_recomputes_total",
			Help: "Mastery recomputations, incremental vs full rebuild",
		},
		[]string{"mode"},
	)

	InvariantTrips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alc_invariant_violations_total",
			Help: "Recompute runs aborted by a mastery invariant violation",
		},
	)

	DailyTasksEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alc_daily_tasks_emitted_total",
			Help: "Adaptive daily tasks persisted by the selector",
		},
	)

	OracleFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mentor_oracle_failures_total",
			Help: "Mentor oracle calls that timed out or errored",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EventsIngested)
	prometheus.MustRegister(EventsRejected)
	prometheus.MustRegister(Recomputes)
	prometheus.MustRegister(InvariantTrips)
	prometheus.MustRegister(DailyTasksEmitted)
	prometheus.MustRegister(OracleFailures)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
