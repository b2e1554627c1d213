package channel

import "encoding/json"

// ServiceConfig mirrors the gRPC service configuration document.
type ServiceConfig struct {
	MethodConfig []MethodConfig `json:"methodConfig"`
}

// MethodConfig defines behavior overrides for specific RPC methods.
type MethodConfig struct {
	// Name lists the service/method pairs this config applies to. A single
	// empty entry matches every method on the channel.
	Name []MethodName `json:"name"`
	// RetryPolicy applies to the named methods.
	RetryPolicy *RetryPolicy `json:"retryPolicy,omitempty"`
}

// MethodName identifies a gRPC method or service. Both fields empty means
// wildcard.
type MethodName struct {
	Service string `json:"service,omitempty"`
	Method  string `json:"method,omitempty"`
}

// RetryPolicy specifies how failed RPCs are retried by the transport.
type RetryPolicy struct {
	MaxAttempts          int      `json:"maxAttempts"`
	InitialBackoff       string   `json:"initialBackoff"`
	MaxBackoff           string   `json:"maxBackoff"`
	BackoffMultiplier    float64  `json:"backoffMultiplier"`
	RetryableStatusCodes []string `json:"retryableStatusCodes"`
}

// The channel-wide retry policy: up to 5 attempts on UNAVAILABLE with
// geometric backoff 0.3s, 0.9s, 2.7s, 8.1s capped at 30s. The constants keep
// the last attempt starting at least 25s after the first and never past the
// 30s ceiling.
const (
	retryMaxAttempts       = 5
	retryInitialBackoff    = "0.3s"
	retryMaxBackoff        = "30s"
	retryBackoffMultiplier = 3
)

// DefaultRetryPolicy returns the fixed channel-wide retry policy.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:          retryMaxAttempts,
		InitialBackoff:       retryInitialBackoff,
		MaxBackoff:           retryMaxBackoff,
		BackoffMultiplier:    retryBackoffMultiplier,
		RetryableStatusCodes: []string{"UNAVAILABLE"},
	}
}

// DefaultServiceConfigJSON serializes the default retry policy as a service
// config document applying to all methods.
func DefaultServiceConfigJSON() string {
	cfg := ServiceConfig{
		MethodConfig: []MethodConfig{
			{
				Name:        []MethodName{{}},
				RetryPolicy: DefaultRetryPolicy(),
			},
		},
	}
	// Marshaling a fixed literal cannot fail.
	data, _ := json.Marshal(cfg)
	return string(data)
}
