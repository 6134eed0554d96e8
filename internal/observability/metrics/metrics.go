// Package metrics exposes Prometheus instruments for the billing engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locums_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status_code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locums_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	rateCalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locums_rate_calculations_total",
		Help: "Rate calculations by outcome.",
	}, []string{"outcome"})

	invoicesGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locums_invoices_generated_total",
		Help: "Invoices generated by type.",
	}, []string{"invoice_type"})

	schedulerJobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locums_scheduler_job_runs_total",
		Help: "Scheduler job executions by job name.",
	}, []string{"job"})

	schedulerJobErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locums_scheduler_job_errors_total",
		Help: "Scheduler job failures by job name.",
	}, []string{"job"})

	schedulerJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locums_scheduler_job_duration_seconds",
		Help:    "Scheduler job latency by job name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

func IncRateCalculation(outcome string) {
	rateCalculationsTotal.WithLabelValues(outcome).Inc()
}

func AddInvoicesGenerated(invoiceType string, count int) {
	invoicesGeneratedTotal.WithLabelValues(invoiceType).Add(float64(count))
}

func IncJobRun(job string) {
	schedulerJobRuns.WithLabelValues(job).Inc()
}

func IncJobError(job string) {
	schedulerJobErrors.WithLabelValues(job).Inc()
}

func ObserveJobDuration(job string, d time.Duration) {
	schedulerJobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
