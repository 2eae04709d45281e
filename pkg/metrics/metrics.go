// Package metrics exposes game and pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/teslashibe/go-emotimeter/pkg/game"
	"github.com/teslashibe/go-emotimeter/pkg/session"
)

// Metrics is a session observer that records every tick.
type Metrics struct {
	Registry *prometheus.Registry

	Ticks            prometheus.Counter
	RoundsStarted    prometheus.Counter
	RoundsWon        *prometheus.CounterVec
	FacesDetected    prometheus.Counter
	FacesRejected    prometheus.Counter
	NoFaceTicks      prometheus.Counter
	ClassifyFailures prometheus.Counter
	Score            prometheus.Gauge
	HoldProgress     prometheus.Gauge
	TickSeconds      prometheus.Histogram
	RoundSeconds     prometheus.Histogram
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emotimeter_ticks_total",
			Help: "Frames processed by the game loop",
		}),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emotimeter_rounds_started_total",
			Help: "Rounds started",
		}),
		RoundsWon: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotimeter_rounds_won_total",
				Help: "Rounds won, by target emotion",
			},
			[]string{"target"},
		),
		FacesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emotimeter_faces_detected_total",
			Help: "Valid face regions located",
		}),
		FacesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emotimeter_faces_rejected_total",
			Help: "Face regions dropped for lying outside the frame",
		}),
		NoFaceTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emotimeter_no_face_ticks_total",
			Help: "Frames without a usable face",
		}),
		ClassifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emotimeter_classify_failures_total",
			Help: "Face regions the emotion classifier could not label",
		}),
		Score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emotimeter_score",
			Help: "Current score",
		}),
		HoldProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emotimeter_hold_progress",
			Help: "Consecutive matching frames in the active round",
		}),
		TickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emotimeter_tick_seconds",
			Help:    "Time spent detecting, classifying and rendering one frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		RoundSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emotimeter_round_seconds",
			Help:    "Time from target selection to success",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}

	m.Registry.MustRegister(
		m.Ticks,
		m.RoundsStarted,
		m.RoundsWon,
		m.FacesDetected,
		m.FacesRejected,
		m.NoFaceTicks,
		m.ClassifyFailures,
		m.Score,
		m.HoldProgress,
		m.TickSeconds,
		m.RoundSeconds,
		collectors.NewGoCollector(),
	)
	return m
}

// Observe implements session.Observer.
func (m *Metrics) Observe(r session.Report) {
	m.Ticks.Inc()
	m.TickSeconds.Observe(r.Duration.Seconds())

	m.FacesDetected.Add(float64(len(r.Faces)))
	if rejected := r.Located - len(r.Faces); rejected > 0 {
		m.FacesRejected.Add(float64(rejected))
	}
	if len(r.Faces) == 0 {
		m.NoFaceTicks.Inc()
	}
	m.ClassifyFailures.Add(float64(r.ClassifyFailures()))

	for _, ev := range r.Tick.Events {
		switch ev.Kind {
		case game.EventRoundStarted:
			m.RoundsStarted.Inc()
		case game.EventRoundWon:
			m.RoundsWon.WithLabelValues(ev.Round.Target.String()).Inc()
			m.RoundSeconds.Observe(ev.Elapsed.Seconds())
		}
	}

	m.Score.Set(float64(r.Tick.State.Score))
	m.HoldProgress.Set(float64(r.Tick.State.Round.Hold))
}
