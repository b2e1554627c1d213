package interceptor

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the metadata key carrying the per-call correlation id.
const RequestIDHeader = "x-request-id"

// UnaryRequestID returns a unary client interceptor that stamps every
// outbound call with a fresh unique identifier. Identifiers are never reused
// within a process lifetime.
func UnaryRequestID() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, uuid.NewString())
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamRequestID returns the stream variant of UnaryRequestID.
func StreamRequestID() grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, uuid.NewString())
		return streamer(ctx, desc, cc, method, opts...)
	}
}

// RequestIDFromOutgoing extracts the stamped request id from an outgoing
// context, or "" when none is set.
func RequestIDFromOutgoing(ctx context.Context) string {
	md, ok := metadata.FromOutgoingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(RequestIDHeader); len(vals) > 0 {
		return vals[len(vals)-1]
	}
	return ""
}
