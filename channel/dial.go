package channel

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

// dialOptions translates the ordered channel option tuples into grpc-go dial
// options. Later tuples override earlier ones for the same key.
//
// Key mapping:
//   - grpc.service_config -> grpc.WithDefaultServiceConfig
//   - grpc.keepalive_* and grpc.http2.max_pings_without_data ->
//     grpc.WithKeepaliveParams (grpc-go never restricts data-less pings on
//     the client, so a zero max_pings_without_data needs no translation)
//   - grpc.enable_retries -> no translation needed; grpc-go enables retries
//     whenever a service config carries a retry policy
//   - grpc.ssl_target_name_override -> enforced through the TLS ServerName
//     set by the trust resolver, not a dial option
//
// Unknown keys are passed over; they remain visible on the channel handle for
// transports that consume them directly.
func dialOptions(opts []Option) []grpc.DialOption {
	var out []grpc.DialOption

	for _, opt := range opts {
		if opt.Key == OptServiceConfig {
			if s, ok := opt.Value.(string); ok {
				out = append(out, grpc.WithDefaultServiceConfig(s))
			}
		}
	}

	if kp, ok := keepaliveParams(opts); ok {
		out = append(out, grpc.WithKeepaliveParams(kp))
	}
	return out
}

// keepaliveParams collects the keepalive tuples into grpc-go's client
// parameters. The second return is false when no keepalive tuple is present.
func keepaliveParams(opts []Option) (keepalive.ClientParameters, bool) {
	var (
		kp  keepalive.ClientParameters
		has bool
	)
	for _, opt := range opts {
		switch opt.Key {
		case OptKeepaliveTimeMs:
			if ms, ok := intValue(opt.Value); ok {
				kp.Time = time.Duration(ms) * time.Millisecond
				has = true
			}
		case OptKeepaliveTimeoutMs:
			if ms, ok := intValue(opt.Value); ok {
				kp.Timeout = time.Duration(ms) * time.Millisecond
				has = true
			}
		case OptKeepalivePermitWithoutCalls:
			if v, ok := intValue(opt.Value); ok {
				kp.PermitWithoutStream = v != 0
				has = true
			}
		}
	}
	return kp, has
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}
