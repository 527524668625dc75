package hub

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	updates       *prometheus.CounterVec
	distance      *prometheus.GaugeVec
	threshold     *prometheus.GaugeVec
	thresholdSets prometheus.Counter
	badUpdates    prometheus.Counter
	viewers       prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sonar_updates_total",
			Help: "Readings received from rangers",
		}, []string{"device_id"}),
		distance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sonar_distance_cm",
			Help: "Last distance reported by a ranger",
		}, []string{"device_id"}),
		threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sonar_threshold_cm",
			Help: "Threshold handed to a ranger",
		}, []string{"device_id"}),
		thresholdSets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sonar_threshold_sets_total",
			Help: "Thresholds set from the dashboard",
		}),
		badUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sonar_bad_updates_total",
			Help: "Rejected update requests",
		}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sonar_dashboard_viewers",
			Help: "Dashboards connected over websocket",
		}),
	}
	m.registry.MustRegister(
		m.updates,
		m.distance,
		m.threshold,
		m.thresholdSets,
		m.badUpdates,
		m.viewers,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) observe(id string, dev Device) {
	m.updates.WithLabelValues(id).Inc()
	m.distance.WithLabelValues(id).Set(dev.Distance)
	m.threshold.WithLabelValues(id).Set(dev.Threshold)
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
