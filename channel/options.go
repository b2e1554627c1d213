package channel

// Channel option keys. The literal names are part of the contract with the
// underlying transport and must be passed through unchanged.
const (
	OptSSLTargetNameOverride       = "grpc.ssl_target_name_override"
	OptEnableRetries               = "grpc.enable_retries"
	OptServiceConfig               = "grpc.service_config"
	OptKeepaliveTimeMs             = "grpc.keepalive_time_ms"
	OptKeepaliveTimeoutMs          = "grpc.keepalive_timeout_ms"
	OptKeepalivePermitWithoutCalls = "grpc.keepalive_permit_without_calls"
	OptHTTP2MaxPingsWithoutData    = "grpc.http2.max_pings_without_data"
)

// Keepalive tuning. Sixty-second pings with a five-second ack deadline, sent
// even on idle channels, with data-less pings unrestricted.
const (
	keepaliveTimeMs             = 60000
	keepaliveTimeoutMs          = 5000
	keepalivePermitWithoutCalls = 1
	http2MaxPingsWithoutData    = 0
)

// Option is a single transport tuning parameter. Values are strings or
// integers; duplicates are allowed and last-wins resolution is the
// transport's concern.
type Option struct {
	Key   string
	Value any
}

// StringOpt builds a string-valued Option.
func StringOpt(key, value string) Option { return Option{Key: key, Value: value} }

// IntOpt builds an integer-valued Option.
func IntOpt(key string, value int) Option { return Option{Key: key, Value: value} }

// BuildOptions copies base and appends the channel tuning parameters in fixed
// order: the TLS target name override (when set), retry enablement, the retry
// policy service config, and the keepalive block. The caller's slice is never
// mutated.
func BuildOptions(base []Option, hostnameOverride string) []Option {
	opts := make([]Option, 0, len(base)+7)
	opts = append(opts, base...)

	if hostnameOverride != "" {
		opts = append(opts, StringOpt(OptSSLTargetNameOverride, hostnameOverride))
	}
	opts = append(opts,
		IntOpt(OptEnableRetries, 1),
		StringOpt(OptServiceConfig, DefaultServiceConfigJSON()),
		IntOpt(OptKeepaliveTimeMs, keepaliveTimeMs),
		IntOpt(OptKeepaliveTimeoutMs, keepaliveTimeoutMs),
		IntOpt(OptKeepalivePermitWithoutCalls, keepalivePermitWithoutCalls),
		IntOpt(OptHTTP2MaxPingsWithoutData, http2MaxPingsWithoutData),
	)
	return opts
}
