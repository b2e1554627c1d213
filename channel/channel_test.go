package channel

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/kbukum/rpckit/errors"
	"github.com/kbukum/rpckit/security/tlstest"
)

func testConfig(t *testing.T, address string) Config {
	t.Helper()
	return Config{
		Address:     address,
		AccessToken: "token123",
		CallLogPath: filepath.Join(t.TempDir(), "calls.log"),
	}
}

func TestNew_LazyConstruction(t *testing.T) {
	// No network access beyond channel registration: the endpoint is never
	// dialed.
	ch, err := New(context.Background(), testConfig(t, "example.com:443"), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer ch.Close()

	if ch.Trust().Pinned() {
		t.Error("expected default trust posture")
	}

	opts := ch.Options()
	if len(opts) != 6 {
		t.Fatalf("expected 6 options, got %d", len(opts))
	}
	if opts[0].Key != OptEnableRetries {
		t.Errorf("expected enable_retries first, got %q", opts[0].Key)
	}
}

func TestNew_ValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"missing address", func(c *Config) { c.Address = "" }},
		{"address without port", func(c *Config) { c.Address = "example.com" }},
		{"missing token", func(c *Config) { c.AccessToken = "" }},
		{"missing log path", func(c *Config) { c.CallLogPath = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, "example.com:443")
			tc.mut(&cfg)
			if _, err := New(context.Background(), cfg, nil); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestNew_PinsCertificate(t *testing.T) {
	certs := tlstest.GenerateCerts(t, "pinned.internal")
	addr := tlstest.StartTLSServer(t, certs)

	cfg := testConfig(t, addr)
	cfg.SkipVerify = true

	ch, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer ch.Close()

	trust := ch.Trust()
	if !trust.Pinned() {
		t.Error("expected a pinned trust anchor")
	}
	if trust.HostnameOverride != "pinned.internal" {
		t.Errorf("expected override 'pinned.internal', got %q", trust.HostnameOverride)
	}

	opts := ch.Options()
	if opts[0].Key != OptSSLTargetNameOverride || opts[0].Value != "pinned.internal" {
		t.Errorf("expected the override option first, got %v", opts[0])
	}
}

func TestNew_TrustFailureSurfacesImmediately(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	cfg := testConfig(t, addr)
	cfg.SkipVerify = true

	if _, err := New(context.Background(), cfg, nil); errors.CodeOf(err) != errors.ErrCodeConnection {
		t.Errorf("expected CONNECTION_ERROR, got %v", err)
	}
}

// startHealthServer runs a TLS gRPC server with a health service that also
// asserts the bearer token and request id on every call.
func startHealthServer(t *testing.T, certs *tlstest.Certs) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	authCheck := func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		if got := md.Get("authorization"); len(got) != 1 || got[0] != "Bearer token123" {
			return nil, status.Error(codes.Unauthenticated, "missing or wrong bearer token")
		}
		if got := md.Get("x-request-id"); len(got) != 1 || got[0] == "" {
			return nil, status.Error(codes.InvalidArgument, "missing request id")
		}
		return handler(ctx, req)
	}

	srv := grpc.NewServer(
		grpc.Creds(credentials.NewTLS(&tls.Config{
			Certificates: []tls.Certificate{certs.ServerTLS},
			MinVersion:   tls.VersionTLS12,
		})),
		grpc.UnaryInterceptor(authCheck),
	)
	healthpb.RegisterHealthServer(srv, health.NewServer())

	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(srv.Stop)

	return ln.Addr().String()
}

func TestChannel_EndToEnd(t *testing.T) {
	certs := tlstest.GenerateCerts(t, "localhost")
	addr := startHealthServer(t, certs)

	cfg := testConfig(t, addr)
	cfg.SkipVerify = true
	cfg.CallTimeout = 10 * time.Second

	ch, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer ch.Close()

	client := healthpb.NewHealthClient(ch)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("expected a successful call, got %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.Status)
	}

	// An unknown service produces a normalized call error.
	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "no.such.Service"})
	if errors.CodeOf(err) != errors.ErrCodeCall {
		t.Errorf("expected CALL_ERROR, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["grpc_code"] != codes.NotFound.String() {
		t.Errorf("expected the original NOT_FOUND preserved, got %v", appErr.Details)
	}

	records := readCallRecords(t, cfg.CallLogPath)
	if len(records) != 2 {
		t.Fatalf("expected 2 call records, got %d", len(records))
	}
	if records[0]["outcome"] != "OK" {
		t.Errorf("expected OK outcome, got %v", records[0]["outcome"])
	}
	if records[1]["outcome"] != string(errors.ErrCodeCall) {
		t.Errorf("expected CALL_ERROR outcome, got %v", records[1]["outcome"])
	}
	for _, rec := range records {
		if s, _ := rec["method"].(string); !strings.HasPrefix(s, "/grpc.health.v1.Health/") {
			t.Errorf("expected a health method, got %v", rec["method"])
		}
		// The bearer token must never appear in call records.
		if line, _ := json.Marshal(rec); strings.Contains(string(line), "token123") {
			t.Error("access token leaked into the call log")
		}
	}
}

func readCallRecords(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open call log: %v", err)
	}
	defer f.Close()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("malformed record %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}
