package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsCollector struct {
	queryDuration *prometheus.HistogramVec
	queriesTotal  *prometheus.CounterVec
	indexSize     prometheus.Gauge
	snapshotBytes prometheus.Gauge
}

func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "geotree_query_duration_seconds",
				Help: "Time spent answering a query",
			},
			[]string{"kind"},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotree_queries_total",
				Help: "Total number of queries answered",
			},
			[]string{"kind"},
		),
		indexSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "geotree_index_points",
				Help: "Number of points in the index",
			},
		),
		snapshotBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "geotree_snapshot_bytes",
				Help: "Size of the last snapshot written to disk",
			},
		),
	}

	prometheus.MustRegister(m.queryDuration)
	prometheus.MustRegister(m.queriesTotal)
	prometheus.MustRegister(m.indexSize)
	prometheus.MustRegister(m.snapshotBytes)

	return m
}

func (m *MetricsCollector) RecordQuery(kind string, duration time.Duration) {
	m.queryDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.queriesTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsCollector) SetIndexSize(n int) {
	m.indexSize.Set(float64(n))
}

func (m *MetricsCollector) SetSnapshotBytes(size int64) {
	m.snapshotBytes.Set(float64(size))
}
