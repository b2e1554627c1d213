// Package errors defines the rpckit error taxonomy.
//
// Every failure surfaced to callers is an *AppError carrying a machine-readable
// ErrorCode, a human-readable message, a retryable flag, and the underlying
// cause. Construction-time failures use ErrCodeConnection and
// ErrCodeCertificateParse; call-time transport failures are normalized into
// ErrCodeCall or, for exhausted-retry UNAVAILABLE failures, ErrCodeUnavailable.
//
// FromRPCStatus converts a gRPC status error into the taxonomy while
// preserving the original status code and message.
package errors
