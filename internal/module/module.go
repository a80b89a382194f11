package module

import (
	"context"

	"modulehost/internal/schema"
)

// Module is the capability set every plugin must satisfy. Exactly one
// implementation is active per process; the host owns it exclusively
// and never swaps it.
type Module interface {
	// Initialize performs one-time setup, e.g. verifying the backend is
	// reachable. The host calls it exactly once before any other
	// operation is dispatched; an error here is fatal to the process.
	Initialize(ctx context.Context) error

	// HealthCheck probes backend liveness. Expected failure modes
	// (backend down, timeout) are reported as an Unhealthy value, never
	// as an error.
	HealthCheck(ctx context.Context) schema.Health

	// Capabilities is pure and constant for the process lifetime.
	Capabilities() schema.ModuleCapabilities

	// RunInference executes one request. A failure is request-scoped:
	// it increments the module's error count and leaves the process and
	// all other in-flight requests unaffected.
	RunInference(ctx context.Context, in schema.Input) (schema.Output, error)

	// Metrics reads the module's own counters. Non-blocking and safe to
	// call concurrently with in-flight inference calls.
	Metrics() schema.MetricsData
}
