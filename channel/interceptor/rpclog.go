package interceptor

import (
	"context"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/kbukum/rpckit/errors"
	"github.com/kbukum/rpckit/logger"
)

// CallLogger appends one structured record per completed call to a file.
// Records are JSON lines written with a single append; concurrent callers are
// safe. Write failures are swallowed: logging must never fail or delay a
// call.
type CallLogger struct {
	log  *logger.Logger
	file *os.File

	mu     sync.Mutex
	closed bool
}

// NewCallLogger opens (or creates) the append-only log file at path.
func NewCallLogger(path string) (*CallLogger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &CallLogger{
		log:  logger.NewWriter(&swallowWriter{f: f}, "rpc-calls"),
		file: f,
	}, nil
}

// Close releases the underlying file handle.
func (c *CallLogger) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.file.Close()
}

// UnaryCallLog returns a unary client interceptor recording method, start
// time, duration, and outcome. The recorded outcome is the normalized error
// kind from the rpckit taxonomy, not the raw transport status.
func (c *CallLogger) UnaryCallLog() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		c.record(ctx, method, start, time.Since(start), err)
		return err
	}
}

// StreamCallLog returns the stream variant; it records stream establishment.
func (c *CallLogger) StreamCallLog() grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		start := time.Now()
		stream, err := streamer(ctx, desc, cc, method, opts...)
		c.record(ctx, method, start, time.Since(start), err)
		return stream, err
	}
}

func (c *CallLogger) record(ctx context.Context, method string, start time.Time, elapsed time.Duration, err error) {
	fields := map[string]interface{}{
		logger.FieldMethod:   method,
		logger.FieldStart:    start.UTC().Format(time.RFC3339Nano),
		logger.FieldDuration: elapsed.Milliseconds(),
		logger.FieldOutcome:  outcomeKind(method, err),
	}
	if id := RequestIDFromOutgoing(ctx); id != "" {
		fields[logger.FieldRequestID] = id
	}
	if err != nil {
		c.log.Error("rpc failed", fields)
	} else {
		c.log.Info("rpc completed", fields)
	}
}

// outcomeKind classifies an outcome in the normalized taxonomy. The logger
// sits inside the error-normalization interceptor on the response path, so it
// applies the same classification itself instead of logging raw statuses.
func outcomeKind(method string, err error) string {
	if err == nil {
		return "OK"
	}
	return string(errors.CodeOf(errors.FromRPCStatus(method, err)))
}

// swallowWriter reports every write as successful so a full disk or revoked
// handle cannot fail a call.
type swallowWriter struct {
	f *os.File
}

func (w *swallowWriter) Write(p []byte) (int, error) {
	_, _ = w.f.Write(p)
	return len(p), nil
}
