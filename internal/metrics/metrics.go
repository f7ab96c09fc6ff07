package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry            = prometheus.NewRegistry()
	repositoriesScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regscan_repositories_scanned_total",
			Help: "Repositories processed by scans, by region.",
		},
		[]string{"region"},
	)
	imagesSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "regscan_images_saved_total",
		Help: "Images written to the local store by scans.",
	})
	scanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regscan_scan_errors_total",
			Help: "Errors recorded during scans. Kind is 'validation', 'images' or 'fatal'.",
		},
		[]string{"kind"},
	)
	imagesDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regscan_images_deleted_total",
			Help: "Images removed by cleanup. Result is 'deleted' or 'failed'.",
		},
		[]string{"result"},
	)
	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "regscan_scan_duration_seconds",
			Help:    "Wall-clock duration of complete scans, by outcome.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"outcome"},
	)
)

func init() {
	registry.MustRegister(
		repositoriesScanned,
		imagesSaved,
		scanErrors,
		imagesDeleted,
		scanDuration,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		},
	)
}

func RepositoryScanned(region string) {
	repositoriesScanned.WithLabelValues(region).Inc()
}

func ImagesSaved(n int) {
	imagesSaved.Add(float64(n))
}

// ScanError counts one recorded or fatal scan error.
func ScanError(kind string) {
	scanErrors.WithLabelValues(kind).Inc()
}

func ImagesDeleted(deleted, failed int) {
	imagesDeleted.WithLabelValues("deleted").Add(float64(deleted))
	imagesDeleted.WithLabelValues("failed").Add(float64(failed))
}

// ScanFinished observes the duration since start under "success" or "error".
func ScanFinished(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	scanDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
