package interceptor

import (
	"context"
	"path"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const trackingScope = "github.com/kbukum/rpckit/channel/interceptor"

// Tracker records call metadata (method, timing, status) for the active
// session as OpenTelemetry spans and metrics. It is purely observational:
// instrument failures are swallowed and recording never alters call
// semantics.
type Tracker struct {
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewTracker creates a Tracker against the globally registered OpenTelemetry
// providers. Apps that never install providers get no-op instruments.
func NewTracker() *Tracker {
	t := &Tracker{
		tracer: otel.Tracer(trackingScope),
	}

	meter := otel.Meter(trackingScope)
	// Instrument creation errors leave the field nil; recording skips them.
	t.calls, _ = meter.Int64Counter(
		"rpc.client.calls",
		metric.WithDescription("Completed RPC calls by method and status"),
	)
	t.duration, _ = meter.Float64Histogram(
		"rpc.client.duration",
		metric.WithDescription("RPC call duration"),
		metric.WithUnit("ms"),
	)
	return t
}

// UnaryTracking returns a unary client interceptor recording each call.
func (t *Tracker) UnaryTracking() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx, span := t.tracer.Start(ctx, "rpc.client"+method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("rpc.system", "grpc"),
				attribute.String("rpc.service", path.Dir(method)[1:]),
				attribute.String("rpc.method", path.Base(method)),
			),
		)
		start := time.Now()

		err := invoker(ctx, method, req, reply, cc, opts...)

		t.record(ctx, span, method, time.Since(start), err)
		return err
	}
}

func (t *Tracker) record(ctx context.Context, span trace.Span, method string, elapsed time.Duration, err error) {
	st := status.Convert(err)
	span.SetAttributes(attribute.String("rpc.grpc.status_code", st.Code().String()))
	if err != nil {
		span.SetStatus(codes.Error, st.Message())
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("rpc.method", method),
		attribute.String("rpc.grpc.status_code", st.Code().String()),
	)
	if t.calls != nil {
		t.calls.Add(ctx, 1, attrs)
	}
	if t.duration != nil {
		t.duration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	}
}
