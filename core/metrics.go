package core

import "context"

// MetricPrefix namespaces every series the service emits. Operation
// counters land at "<prefix>.<operation>.total" and latency histograms
// at "<prefix>.<operation>.duration_ms".
const MetricPrefix = "gateway"

func operationCounterName(operation string) string {
	return MetricPrefix + "." + operation + ".total"
}

func operationDurationName(operation string) string {
	return MetricPrefix + "." + operation + ".duration_ms"
}

// NopMetricsRecorder discards every series. It backs the service when no
// recorder is wired so instrumentation sites never nil-check.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// cloneTags keeps recorder implementations from retaining or mutating
// the caller's tag map.
func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}
