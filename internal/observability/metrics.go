package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "era5land"

// Metrics holds the Prometheus collectors for the conversion pipeline.
type Metrics struct {
	Dates            *prometheus.CounterVec // labels: outcome={written,skipped,failed}
	Failures         *prometheus.CounterVec // labels: kind={input_discovery,io,shape_mismatch,write,unknown}
	ArtifactsWritten *prometheus.CounterVec // labels: category
	PipelineRunning  prometheus.Gauge
	LastRunTimestamp prometheus.Gauge

	BandsRead             prometheus.Histogram
	TileReadDuration      prometheus.Histogram
	CategoryWriteDuration *prometheus.HistogramVec // labels: category

	Notifications *prometheus.CounterVec // labels: outcome={sent,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		Dates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dates_total",
			Help:      "Dates resolved by the pipeline, by outcome.",
		}, []string{"outcome"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed dates by error kind.",
		}, []string{"kind"}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "NetCDF artifacts written, by category.",
		}, []string{"category"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a conversion run is in progress, 0 otherwise.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last conversion run finished.",
		}),
		BandsRead: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bands_read",
			Help:      "Number of bands read per tile for one date.",
			Buckets:   []float64{1, 6, 12, 24, 36, 48, 60, 69},
		}),
		TileReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tile_read_duration_seconds",
			Help:      "Duration of the concurrent two-tile read and merge for one date.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		CategoryWriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "category_write_duration_seconds",
			Help:      "Duration of build, finalize and write for one category artifact.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"category"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Artifact notifications published, by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Dates,
		m.Failures,
		m.ArtifactsWritten,
		m.PipelineRunning,
		m.LastRunTimestamp,
		m.BandsRead,
		m.TileReadDuration,
		m.CategoryWriteDuration,
		m.Notifications,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
