package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
)

const (
	// Namespace for all metrics
	namespace = "supplyload"
	// Subsystem for loading metrics
	subsystem = "loading"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalLoadingCollector is the singleton loading metrics collector
	// Set by SetGlobalLoadingCollector() when metrics are enabled
	globalLoadingCollector LoadingMetricsRecorder
)

// LoadingMetricsRecorder defines the interface for recording loading session events
type LoadingMetricsRecorder interface {
	RecordLoadTick(vehicle string, stats loading.Stats)
	RecordSessionEnd(vehicle string, outcome string, holdFull bool)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Reset drops the registry and the global collector
func Reset() {
	Registry = nil
	globalLoadingCollector = nil
}

// SetGlobalLoadingCollector sets the global loading metrics collector
func SetGlobalLoadingCollector(collector LoadingMetricsRecorder) {
	globalLoadingCollector = collector
}

// RecordLoadTick records the outcome of one Load or BackgroundLoad call globally
func RecordLoadTick(vehicle string, stats loading.Stats) {
	if globalLoadingCollector != nil {
		globalLoadingCollector.RecordLoadTick(vehicle, stats)
	}
}

// RecordSessionEnd records a finished loading session globally
func RecordSessionEnd(vehicle string, outcome string, holdFull bool) {
	if globalLoadingCollector != nil {
		globalLoadingCollector.RecordSessionEnd(vehicle, outcome, holdFull)
	}
}
