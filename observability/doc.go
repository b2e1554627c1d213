// Package observability initializes the OpenTelemetry providers that back
// rpckit's call tracking.
//
// The tracking interceptor records spans and metrics against the globally
// registered providers; applications that skip initialization get no-op
// instruments at negligible cost. InitTracer and InitMeter install OTLP/HTTP
// exporters and register the providers globally.
package observability
