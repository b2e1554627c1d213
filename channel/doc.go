// Package channel builds authenticated, encrypted, resilient gRPC client
// channels.
//
// New combines four pieces:
//
//   - trust resolution (security.ResolveTrust): system roots, forced anchor
//     export, or trust-on-first-use certificate pinning
//   - channel options (BuildOptions): retry service config, keepalive tuning,
//     and the optional TLS target name override, as ordered key/value tuples
//   - credentials: TLS transport credentials composed with a bearer-token
//     per-RPC credential derived from the access token
//   - the client interceptor chain (interceptor.Chain): request-id stamping,
//     call tracking, error normalization, call logging
//
// The connection is lazy: New succeeds even when the remote endpoint is
// unreachable, and transport failures surface at call time after the retry
// policy is exhausted. Only the certificate-pinning path performs network I/O
// during construction.
package channel
