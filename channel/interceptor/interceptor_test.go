package interceptor

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kbukum/rpckit/errors"
)

// chainUnary composes interceptors the way grpc-go does: the first one runs
// outermost.
func chainUnary(interceptors []grpc.UnaryClientInterceptor, final grpc.UnaryInvoker) grpc.UnaryInvoker {
	invoker := final
	for i := len(interceptors) - 1; i >= 0; i-- {
		next := invoker
		ic := interceptors[i]
		invoker = func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return ic(ctx, method, req, reply, cc, next, opts...)
		}
	}
	return invoker
}

func invokeChain(t *testing.T, interceptors []grpc.UnaryClientInterceptor, final grpc.UnaryInvoker) error {
	t.Helper()
	return chainUnary(interceptors, final)(context.Background(), "/test.Service/Run", nil, nil, nil)
}

func readRecords(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("malformed log line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}

func TestUnaryRequestID_StampsFreshID(t *testing.T) {
	seen := make(map[string]bool)
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		id := RequestIDFromOutgoing(ctx)
		if id == "" {
			t.Fatal("expected a request id on the outgoing context")
		}
		if seen[id] {
			t.Fatalf("request id %s reused", id)
		}
		seen[id] = true
		return nil
	}

	ic := UnaryRequestID()
	for i := 0; i < 100; i++ {
		if err := ic(context.Background(), "/test.Service/Run", nil, nil, nil, invoker); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(seen) != 100 {
		t.Errorf("expected 100 distinct ids, got %d", len(seen))
	}
}

func TestUnaryErrorNormalization(t *testing.T) {
	ic := UnaryErrorNormalization()

	err := ic(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return status.Error(codes.Unavailable, "down")
		})
	if errors.CodeOf(err) != errors.ErrCodeUnavailable {
		t.Errorf("expected UNAVAILABLE_ERROR, got %v", err)
	}

	err = ic(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return nil
		})
	if err != nil {
		t.Errorf("expected success to pass through, got %v", err)
	}
}

func TestUnaryTracking_NeverAltersCall(t *testing.T) {
	tracker := NewTracker()
	want := status.Error(codes.Internal, "boom")

	got := tracker.UnaryTracking()(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return want
		})
	if got != want {
		t.Errorf("expected the original error, got %v", got)
	}

	if err := tracker.UnaryTracking()(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return nil
		}); err != nil {
		t.Errorf("expected success to pass through, got %v", err)
	}
}

func TestUnaryTimeout_AppliesDeadline(t *testing.T) {
	ic := UnaryTimeout(time.Minute)
	err := ic(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnaryTimeout_KeepsExistingDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	want, _ := ctx.Deadline()

	err := UnaryTimeout(time.Minute)(ctx, "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			got, ok := ctx.Deadline()
			if !ok || !got.Equal(want) {
				t.Errorf("expected the caller's deadline %v, got %v", want, got)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnaryTimeout_ZeroIsPassThrough(t *testing.T) {
	err := UnaryTimeout(0)(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			if _, ok := ctx.Deadline(); ok {
				t.Error("expected no deadline")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCallLogger_RecordsOutcome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")
	calls, err := NewCallLogger(path)
	if err != nil {
		t.Fatalf("NewCallLogger: %v", err)
	}
	defer calls.Close()

	ic := calls.UnaryCallLog()
	_ = ic(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return nil
		})
	_ = ic(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return status.Error(codes.InvalidArgument, "bad request")
		})

	records := readRecords(t, path)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["outcome"] != "OK" {
		t.Errorf("expected OK outcome, got %v", records[0]["outcome"])
	}
	if records[1]["outcome"] != string(errors.ErrCodeCall) {
		t.Errorf("expected CALL_ERROR outcome, got %v", records[1]["outcome"])
	}
	for _, rec := range records {
		if rec["method"] != "/test.Service/Run" {
			t.Errorf("expected method field, got %v", rec["method"])
		}
		if _, ok := rec["start"]; !ok {
			t.Error("expected start field")
		}
		if _, ok := rec["duration_ms"]; !ok {
			t.Error("expected duration_ms field")
		}
	}
}

func TestCallLogger_ConcurrentWritesAreLineSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")
	calls, err := NewCallLogger(path)
	if err != nil {
		t.Fatalf("NewCallLogger: %v", err)
	}
	defer calls.Close()

	ic := calls.UnaryCallLog()
	ok := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = ic(context.Background(), "/test.Service/Run", nil, nil, nil, ok)
			}
		}()
	}
	wg.Wait()

	if got := len(readRecords(t, path)); got != 500 {
		t.Errorf("expected 500 intact records, got %d", got)
	}
}

func TestCallLogger_SwallowsWriteFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")
	calls, err := NewCallLogger(path)
	if err != nil {
		t.Fatalf("NewCallLogger: %v", err)
	}
	// Revoke the handle so every write fails.
	if err := calls.file.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	err = calls.UnaryCallLog()(context.Background(), "/test.Service/Run", nil, nil, nil,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			return nil
		})
	if err != nil {
		t.Errorf("expected the call to succeed despite a dead log handle, got %v", err)
	}
}

func TestChain_OrderAndNormalizedLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")
	chain, err := NewChain(path)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	defer chain.Close()

	interceptors := chain.Unary()
	if len(interceptors) != 4 {
		t.Fatalf("expected 4 interceptors, got %d", len(interceptors))
	}

	// A failing call: the log record must carry the normalized error kind,
	// not the raw transport status.
	err = invokeChain(t, interceptors,
		func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
			if RequestIDFromOutgoing(ctx) == "" {
				t.Error("expected the request id to be stamped before the call reaches the wire")
			}
			return status.Error(codes.Unavailable, "still down")
		})
	if errors.CodeOf(err) != errors.ErrCodeUnavailable {
		t.Errorf("expected UNAVAILABLE_ERROR surfaced to the caller, got %v", err)
	}

	records := readRecords(t, path)
	if len(records) != 1 {
		t.Fatalf("expected exactly one record per logical call, got %d", len(records))
	}
	if records[0]["outcome"] != string(errors.ErrCodeUnavailable) {
		t.Errorf("expected normalized outcome UNAVAILABLE_ERROR, got %v", records[0]["outcome"])
	}
	if _, ok := records[0]["request_id"]; !ok {
		t.Error("expected the stamped request id in the log record")
	}
}
