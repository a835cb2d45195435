package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the engine.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Assessment metrics.
	Assessments      prometheus.Counter
	AssessmentErrors prometheus.Counter
	Fallbacks        *prometheus.CounterVec   // labels: hazard, stage={series,attributes,exposure,vulnerability,...}
	HazardDuration   *prometheus.HistogramVec // labels: hazard
	SinkWrites       *prometheus.CounterVec   // labels: sink={kafka,sqlite}, outcome={success,error}

	// Relocation search metrics.
	RelocationCandidates *prometheus.CounterVec // labels: outcome={evaluated,failed}
	RelocationDuration   prometheus.Histogram

	// Climate data access metrics.
	SeriesCache        *prometheus.CounterVec   // labels: result={hit,miss}
	ClimateAPIRequests *prometheus.CounterVec   // labels: endpoint={series,tracks,attributes}, outcome={success,error,not_found}
	ClimateAPIDuration *prometheus.HistogramVec // labels: endpoint

	RescoreRuns *prometheus.CounterVec // labels: outcome={success,partial,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total assessment requests read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total hazard results written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total requests that could not be assessed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-assess-load cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Assessments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Total location assessments completed.",
		}),
		AssessmentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_errors_total",
			Help:      "Total location assessments aborted by an upstream failure.",
		}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Documented fallbacks applied, by hazard and stage.",
		}, []string{"hazard", "stage"}),
		HazardDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hazard_duration_seconds",
			Help:      "Time to compute one hazard result, including data access.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"hazard"}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Result batch writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
		RelocationCandidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relocation_candidates_total",
			Help:      "Relocation candidates by evaluation outcome.",
		}, []string{"outcome"}),
		RelocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relocation_search_duration_seconds",
			Help:      "Duration of a complete relocation search.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_total",
			Help:      "Climate series cache lookups by result.",
		}, []string{"result"}),
		ClimateAPIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "climate_api_requests_total",
			Help:      "Climate data API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ClimateAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "climate_api_duration_seconds",
			Help:      "Climate data API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		RescoreRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rescore_runs_total",
			Help:      "Scheduled portfolio re-scoring runs by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Assessments,
		m.AssessmentErrors,
		m.Fallbacks,
		m.HazardDuration,
		m.SinkWrites,
		m.RelocationCandidates,
		m.RelocationDuration,
		m.SeriesCache,
		m.ClimateAPIRequests,
		m.ClimateAPIDuration,
		m.RescoreRuns,
	}
}
