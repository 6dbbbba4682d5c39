package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the will generation pipeline.
type Metrics struct {
	// Pipeline stage latencies by stage
	StageLatency *prometheus.HistogramVec

	// Generation outcomes by result
	GenerationOutcome *prometheus.CounterVec

	// Validation failures by form section
	ValidationErrors *prometheus.CounterVec

	// Overall generation latency including both PDF passes
	GenerateLatency prometheus.Histogram

	// Pages in generated documents
	DocumentPages prometheus.Histogram
}

// New creates a new Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "willgen_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"stage"}), // stage: "validate", "context", "resolve", "render", "assemble", "checklist"

		GenerationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "willgen_generations_total",
			Help: "Total generation attempts by result",
		}, []string{"result"}), // result: "completed", "validation_failed", "error"

		ValidationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "willgen_validation_errors_total",
			Help: "Total validation errors by form section",
		}, []string{"section"}),

		GenerateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "willgen_generate_duration_seconds",
			Help:    "Duration of full generation from payload to stored PDF",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		DocumentPages: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "willgen_document_pages",
			Help:    "Page count of generated will documents",
			Buckets: []float64{2, 4, 6, 8, 10, 15, 20, 30},
		}),
	}
}

// ObserveStageLatency records the duration of one pipeline stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementOutcome records a generation outcome.
func (m *Metrics) IncrementOutcome(result string) {
	if m != nil {
		m.GenerationOutcome.WithLabelValues(result).Inc()
	}
}

// IncrementValidationError records a validation failure in a form section.
func (m *Metrics) IncrementValidationError(section string) {
	if m != nil {
		m.ValidationErrors.WithLabelValues(section).Inc()
	}
}

// ObserveGenerateLatency records the total generation duration.
func (m *Metrics) ObserveGenerateLatency(d time.Duration) {
	if m != nil {
		m.GenerateLatency.Observe(d.Seconds())
	}
}

// ObserveDocumentPages records the page count of a generated will.
func (m *Metrics) ObserveDocumentPages(pages int) {
	if m != nil {
		m.DocumentPages.Observe(float64(pages))
	}
}
