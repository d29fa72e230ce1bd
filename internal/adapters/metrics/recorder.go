// Package metrics counts reported steps in a Prometheus registry and exports them as a
// node-exporter textfile.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "pixi"

// Recorder collects step metrics. Renderers wrapped by it report every step they see.
type Recorder struct {
	registry *prometheus.Registry

	plannedSteps   prometheus.Counter
	stepsStarted   *prometheus.CounterVec
	stepsCompleted *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	stepsRunning   prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		plannedSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_planned_total",
			Help:      "Total number of steps announced in plans",
		}),
		stepsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_started_total",
				Help:      "Total number of steps started",
			},
			[]string{"kind"},
		),
		stepsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_completed_total",
				Help:      "Total number of steps finished, by terminal status",
			},
			[]string{"kind", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of finished steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"kind"},
		),
		stepsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "steps_running",
			Help:      "Number of steps currently running",
		}),
	}

	r.registry.MustRegister(
		r.plannedSteps,
		r.stepsStarted,
		r.stepsCompleted,
		r.stepDuration,
		r.stepsRunning,
	)
	return r
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteToTextfile writes the current metrics to path in the text exposition format.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics"), "path", path)
	}
	return nil
}

// Wrap returns a renderer that records every event before forwarding it to next.
func (r *Recorder) Wrap(next ports.Renderer) ports.Renderer {
	return &renderer{
		next:     next,
		recorder: r,
		spans:    make(map[string]span),
	}
}

type span struct {
	kind  domain.StepKind
	start time.Time
}

var _ ports.Renderer = (*renderer)(nil)

type renderer struct {
	next     ports.Renderer
	recorder *Recorder

	mu    sync.Mutex
	spans map[string]span
}

func (r *renderer) Start(ctx context.Context) error {
	return r.next.Start(ctx)
}

func (r *renderer) Stop() error {
	return r.next.Stop()
}

func (r *renderer) Wait() error {
	return r.next.Wait()
}

func (r *renderer) OnPlanEmit(steps []string) {
	r.recorder.plannedSteps.Add(float64(len(steps)))
	r.next.OnPlanEmit(steps)
}

func (r *renderer) OnStepStart(spanID, parentID, name string, kind domain.StepKind, startTime time.Time) {
	r.mu.Lock()
	r.spans[spanID] = span{kind: kind, start: startTime}
	r.mu.Unlock()

	r.recorder.stepsStarted.WithLabelValues(string(kind)).Inc()
	r.recorder.stepsRunning.Inc()
	r.next.OnStepStart(spanID, parentID, name, kind, startTime)
}

func (r *renderer) OnStepLog(spanID string, data []byte) {
	r.next.OnStepLog(spanID, data)
}

func (r *renderer) OnStepComplete(spanID string, endTime time.Time, status domain.StepStatus, err error) {
	r.mu.Lock()
	s, ok := r.spans[spanID]
	delete(r.spans, spanID)
	r.mu.Unlock()

	if ok {
		kind := string(s.kind)
		r.recorder.stepsCompleted.WithLabelValues(kind, string(status)).Inc()
		r.recorder.stepDuration.WithLabelValues(kind).Observe(endTime.Sub(s.start).Seconds())
		r.recorder.stepsRunning.Dec()
	}
	r.next.OnStepComplete(spanID, endTime, status, err)
}
