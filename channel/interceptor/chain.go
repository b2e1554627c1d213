package interceptor

import "google.golang.org/grpc"

// Chain holds the assembled client interception chain for one channel.
type Chain struct {
	tracker *Tracker
	calls   *CallLogger
}

// NewChain builds the interception chain, opening the append-only call log at
// logPath.
func NewChain(logPath string) (*Chain, error) {
	calls, err := NewCallLogger(logPath)
	if err != nil {
		return nil, err
	}
	return &Chain{
		tracker: NewTracker(),
		calls:   calls,
	}, nil
}

// Unary returns the unary client interceptors in their fixed order:
// request-id stamping, call tracking, error normalization, call logging.
// The order is a correctness constant, not configuration: request-id runs
// outermost, and the call logger sits closest to the wire.
func (c *Chain) Unary() []grpc.UnaryClientInterceptor {
	return []grpc.UnaryClientInterceptor{
		UnaryRequestID(),
		c.tracker.UnaryTracking(),
		UnaryErrorNormalization(),
		c.calls.UnaryCallLog(),
	}
}

// Stream returns the stream client interceptors: request-id stamping and
// stream-establishment logging.
func (c *Chain) Stream() []grpc.StreamClientInterceptor {
	return []grpc.StreamClientInterceptor{
		StreamRequestID(),
		c.calls.StreamCallLog(),
	}
}

// Close releases chain resources (the call log file handle).
func (c *Chain) Close() error {
	return c.calls.Close()
}
