package common

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks the result stream seen by a consumer.
type Metrics struct {
	registry *prometheus.Registry

	resultsReceived *prometheus.CounterVec
	lastPiError     *prometheus.GaugeVec
	lastTimeMS      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		resultsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pibench_results_received_total",
			Help: "How many benchmark results arrived on the results exchange.",
		}, []string{"language", "mode"}),
		lastPiError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pibench_last_pi_error",
			Help: "Absolute error of the latest pi estimate.",
		}, []string{"language", "mode"}),
		lastTimeMS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pibench_last_time_ms",
			Help: "Wall time of the latest run in milliseconds.",
		}, []string{"language", "mode"}),
	}

	m.registry.MustRegister(m.resultsReceived, m.lastPiError, m.lastTimeMS)

	return m
}

func (m *Metrics) Observe(packet AMQPPacket) {
	r := packet.Result

	m.resultsReceived.WithLabelValues(r.Language, r.Mode).Inc()
	m.lastPiError.WithLabelValues(r.Language, r.Mode).Set(r.Error)
	m.lastTimeMS.WithLabelValues(r.Language, r.Mode).Set(r.TimeMS)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
