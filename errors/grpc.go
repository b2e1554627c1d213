package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FromRPCStatus normalizes a gRPC call error into the rpckit taxonomy.
// The original status code and message are preserved in the error details
// and the cause chain. A nil error returns nil; an *AppError passes through.
func FromRPCStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}

	st := status.Convert(err)

	var appErr *AppError
	if st.Code() == codes.Unavailable {
		// The transport retry policy has already exhausted its attempts by
		// the time an UNAVAILABLE status reaches an interceptor.
		appErr = &AppError{
			Code:      ErrCodeUnavailable,
			Message:   "The service is unavailable. Retries have been exhausted.",
			Retryable: true,
		}
	} else {
		appErr = &AppError{
			Code:      ErrCodeCall,
			Message:   fmt.Sprintf("RPC failed with status %s.", st.Code()),
			Retryable: false,
		}
	}

	return appErr.
		WithDetail("method", method).
		WithDetail("grpc_code", st.Code().String()).
		WithDetail("grpc_message", st.Message()).
		WithCause(err)
}

// RPCCode returns the gRPC status code behind a normalized call error.
// Falls back to status.Convert for errors that were never normalized.
func RPCCode(err error) codes.Code {
	if appErr, ok := AsAppError(err); ok && appErr.Cause != nil {
		return status.Convert(appErr.Cause).Code()
	}
	return status.Convert(err).Code()
}
