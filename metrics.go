package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sketchflow"

// Metrics counts what happens on the canvas during a session. Each editor
// gets its own registry so tests never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	shapesRecognized *prometheus.CounterVec
	connectors       *prometheus.CounterVec
	historySaves     *prometheus.CounterVec
	gestures         *prometheus.CounterVec
	imports          *prometheus.CounterVec
	strokePoints     prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		shapesRecognized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "strokes_classified_total",
				Help:      "Completed strokes by resulting item kind",
			},
			[]string{"kind"},
		),
		connectors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "connect_attempts_total",
				Help:      "Connector requests by outcome",
			},
			[]string{"result"},
		),
		historySaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "history_saves_total",
				Help:      "Snapshots recorded by save mode",
			},
			[]string{"mode"},
		),
		gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "gesture_transitions_total",
				Help:      "Gesture state entries",
			},
			[]string{"state"},
		),
		imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "imports_total",
				Help:      "Scene imports by outcome",
			},
			[]string{"result"},
		),
		strokePoints: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "stroke_points",
				Help:      "Raw points per completed stroke",
				Buckets:   prometheus.ExponentialBuckets(4, 2, 8),
			},
		),
	}
	m.registry.MustRegister(
		m.shapesRecognized,
		m.connectors,
		m.historySaves,
		m.gestures,
		m.imports,
		m.strokePoints,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteToFile dumps the current values in the text exposition format.
func (m *Metrics) WriteToFile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
