// Package security decides what certificate material an rpckit channel
// trusts.
//
// ResolveTrust supports two postures. With verification enabled the channel
// relies on the platform trust store, optionally exporting it as explicit PEM
// bytes. With verification disabled the resolver performs a raw TLS handshake
// against the target, pins the peer's leaf certificate, and overrides the
// expected hostname with the certificate's first DNS Subject Alternative
// Name. The pinned channel stays encrypted and trusts exactly that one
// certificate.
package security
