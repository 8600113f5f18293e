package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every collector exposed on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// CustomAPIBuckets covers fast handler responses up to slow upstream profile saves
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics
	DBClientOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBClientOperationTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Remote profile API metrics
	ProfileAPIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_api_client_request_duration_seconds",
			Help:    "Remote profile API request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	ProfileAPIRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_api_client_request_total",
			Help: "Total number of remote profile API requests",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics
	StorageRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	WizardSessionsStarted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_wizard_sessions_started_total",
			Help: "Total number of profile wizard sessions started",
		},
		[]string{"role", "mode"},
	)

	WizardStepSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_wizard_step_submissions_total",
			Help: "Total number of wizard step submissions",
		},
		[]string{"step", "status"},
	)

	WizardCompletions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_wizard_completions_total",
			Help: "Total number of wizard finalize attempts",
		},
		[]string{"role", "status"},
	)

	WizardSeedFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_wizard_seed_failures_total",
			Help: "Edit-mode wizard starts that fell back to an empty draft",
		},
	)

	WizardDocumentsSkipped = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_wizard_documents_skipped_total",
			Help: "Documents steps submitted without any document",
		},
	)

	ProfileUpdates = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_profile_updates_total",
			Help: "Total number of profile updates",
		},
		[]string{"status"},
	)

	DocumentUploads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_document_uploads_total",
			Help: "Total number of provider document uploads",
		},
		[]string{"kind", "status"},
	)

	ProviderSearches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_provider_searches_total",
			Help: "Total number of provider searches",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)

	buildInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_build_info",
			Help: "Always 1, labelled with the service name",
		},
		[]string{"service_name"},
	)
)

// Init records the service identity
func Init(serviceName string) {
	buildInfo.WithLabelValues(serviceName).Set(1)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration returns seconds elapsed since start
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
