// Package metrics shapes client-side metrics before they reach a statsd.Sink.
package metrics

import (
	"time"

	obserrors "github.com/target/mmk-ui-client/internal/observability/errors"
	"github.com/target/mmk-ui-client/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// Metric names.
const (
	RequestCount    = "client.request"
	RequestDuration = "client.request.duration"
)

// RequestMetric describes one client operation.
type RequestMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitRequest counts the operation and records its latency. Rejected operations never
// reached the backend and carry no timing.
func EmitRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}
	if in.Err != nil && in.Result != ResultSuccess {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(RequestCount, 1, tags)
	if in.Duration > 0 && in.Result != ResultRejected {
		sink.Timing(RequestDuration, in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
