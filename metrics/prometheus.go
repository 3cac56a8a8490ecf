package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go_photodna/photodna"
)

// Prometheus exports hash operation metrics. It is a photodna.Observer.
type Prometheus struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	borders  prometheus.Counter
	images   *prometheus.CounterVec
}

// NewPrometheus registers the collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "photodna_hash_duration_seconds",
			Help:    "Time spent in native hash calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photodna_hash_errors_total",
			Help: "Failed hash operations by error kind.",
		}, []string{"operation", "kind"}),
		borders: factory.NewCounter(prometheus.CounterOpts{
			Name: "photodna_border_detected_total",
			Help: "Border detection calls that found a border.",
		}),
		images: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "photodna_images_total",
			Help: "Hash operations by pixel format.",
		}, []string{"pixel_format"}),
	}
}

// ObserveOperation records a Generator event.
func (p *Prometheus) ObserveOperation(ev photodna.OperationEvent) {
	p.duration.WithLabelValues(ev.Operation).Observe(ev.Duration.Seconds())
	p.images.WithLabelValues(ev.PixelFormat.String()).Inc()
	if ev.Err != nil {
		p.errors.WithLabelValues(ev.Operation, errorKindLabel(ev.Err)).Inc()
	}
	if ev.BorderFound {
		p.borders.Inc()
	}
}

// Registry returns the registry holding the collectors.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

var _ photodna.Observer = (*Prometheus)(nil)
