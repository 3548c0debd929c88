// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the HTTP handlers and services record through.
type Recorder interface {
	RecordGeneration(template string)
	RecordGenerationFailure(reason string)
	RecordGenerationLatency(duration time.Duration)
	RecordPayment(plan string, status string)
	RecordEnhance(success bool)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	generations     *prometheus.CounterVec
	generationFail  *prometheus.CounterVec
	generateLatency prometheus.Histogram
	payments        *prometheus.CounterVec
	enhanceSuccess  prometheus.Counter
	enhanceFail     prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thumbgenie_generations_total",
			Help: "Completed thumbnail generations by template.",
		}, []string{"template"}),
		generationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thumbgenie_generation_failures_total",
			Help: "Failed thumbnail generations by reason.",
		}, []string{"reason"}),
		generateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "thumbgenie_generation_latency_seconds",
			Help:    "End to end latency of the generate operation in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 45, 60},
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thumbgenie_payments_total",
			Help: "Payment outcomes by plan and status.",
		}, []string{"plan", "status"}),
		enhanceSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thumbgenie_enhance_success_total",
			Help: "Successful AI enhance requests.",
		}),
		enhanceFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thumbgenie_enhance_fail_total",
			Help: "Failed AI enhance requests.",
		}),
	}

	reg.MustRegister(
		c.generations,
		c.generationFail,
		c.generateLatency,
		c.payments,
		c.enhanceSuccess,
		c.enhanceFail,
	)

	return c
}

func (c *Collector) RecordGeneration(template string) {
	c.generations.WithLabelValues(template).Inc()
}

func (c *Collector) RecordGenerationFailure(reason string) {
	c.generationFail.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.generateLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordPayment(plan string, status string) {
	c.payments.WithLabelValues(plan, status).Inc()
}

func (c *Collector) RecordEnhance(success bool) {
	if success {
		c.enhanceSuccess.Inc()
		return
	}
	c.enhanceFail.Inc()
}

// Handler returns the Prometheus scrape handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
