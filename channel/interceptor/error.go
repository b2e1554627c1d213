package interceptor

import (
	"context"

	"google.golang.org/grpc"

	"github.com/kbukum/rpckit/errors"
)

// UnaryErrorNormalization returns a unary client interceptor that translates
// failed call statuses into the rpckit error taxonomy. The transport has
// already exhausted its retry policy by the time a status reaches this
// interceptor, so translation happens exactly once per logical call.
func UnaryErrorNormalization() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return errors.FromRPCStatus(method, invoker(ctx, method, req, reply, cc, opts...))
	}
}
