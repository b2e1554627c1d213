// Package logger provides structured logging for rpckit built on zerolog.
//
// A Logger wraps zerolog with a service name and optional component tag:
//
//	log := logger.NewDefault("channel-factory")
//	log.Info("channel created", map[string]interface{}{"target": "api.example.com:443"})
//
// Output format (json or console), level, and destination are controlled by
// Config. Loggers are safe for concurrent use.
package logger
