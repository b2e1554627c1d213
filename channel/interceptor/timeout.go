package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// UnaryTimeout returns a unary client interceptor that applies a default
// timeout to calls that do not already carry a deadline. A non-positive
// timeout yields a pass-through interceptor.
func UnaryTimeout(timeout time.Duration) grpc.UnaryClientInterceptor {
	if timeout <= 0 {
		return func(
			ctx context.Context,
			method string,
			req, reply interface{},
			cc *grpc.ClientConn,
			invoker grpc.UnaryInvoker,
			opts ...grpc.CallOption,
		) error {
			return invoker(ctx, method, req, reply, cc, opts...)
		}
	}
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
