package server

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the server's spans.
const TracerName = "github.com/sputnik-dev/sputnik/pkg/server"

// newTracer returns a tracer from tp, or from the global provider when tp is
// nil. Without an SDK installed the global provider is a no-op.
func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}
