// Package interceptor provides the client-side call interception chain for
// rpckit channels.
//
// Chain composes the interceptors in a fixed, correctness-relevant order:
// request-id stamping, call tracking, error normalization, call logging.
// Request-id runs outermost and sees the call first; the call logger sits
// closest to the wire and records one line-oriented record per logical call,
// with outcomes expressed in the normalized error taxonomy rather than raw
// transport statuses. Tracking and logging are observational: their internal
// failures are swallowed and never fail or delay a call.
package interceptor
