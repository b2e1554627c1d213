package security

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/kbukum/rpckit/errors"
)

// TrustConfig holds the certificate material a channel trusts.
// The zero value means "platform trust store, no overrides".
type TrustConfig struct {
	// AnchorPEM is the PEM-encoded trust anchor set. Nil means the ambient
	// platform trust store is used.
	AnchorPEM []byte
	// HostnameOverride replaces the expected server name during certificate
	// verification. Empty means no override.
	HostnameOverride string
}

// Pinned reports whether explicit anchor bytes are set.
func (c TrustConfig) Pinned() bool { return len(c.AnchorPEM) > 0 }

// HasHostnameOverride reports whether a server name override is set.
func (c TrustConfig) HasHostnameOverride() bool { return c.HostnameOverride != "" }

// ClientTLSConfig builds a *tls.Config enforcing the resolved trust posture.
func (c TrustConfig) ClientTLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if c.Pinned() {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(c.AnchorPEM) {
			return nil, fmt.Errorf("security: failed to parse trust anchor PEM")
		}
		cfg.RootCAs = pool
	}
	if c.HasHostnameOverride() {
		cfg.ServerName = c.HostnameOverride
	}
	return cfg, nil
}

// handshakeTimeout bounds the certificate-fetch handshake in ResolveTrust.
const handshakeTimeout = 10 * time.Second

// ResolveTrust decides the trust posture for a channel to address (host:port).
//
// With verifySSL true the platform trust store is used; forceAnchorLoad
// additionally exports the store as explicit PEM bytes for transports that
// need byte-level anchors. With verifySSL false the resolver dials the target,
// retrieves the peer's leaf certificate without exchanging application data,
// and pins it; the certificate's first DNS Subject Alternative Name becomes
// the hostname override since the pinned certificate may not match the
// connection address.
//
// Returns ErrCodeConnection if the handshake fails and ErrCodeCertificateParse
// if the retrieved certificate is unusable.
func ResolveTrust(ctx context.Context, address string, verifySSL, forceAnchorLoad bool) (TrustConfig, error) {
	if verifySSL {
		if !forceAnchorLoad {
			return TrustConfig{}, nil
		}
		anchors, err := loadSystemAnchors()
		if err != nil {
			return TrustConfig{}, errors.Connection(address, err)
		}
		return TrustConfig{AnchorPEM: anchors}, nil
	}

	cert, err := fetchPeerCertificate(ctx, address)
	if err != nil {
		return TrustConfig{}, errors.Connection(address, err)
	}

	override, err := firstDNSSAN(cert)
	if err != nil {
		return TrustConfig{}, errors.CertificateParse(address, err)
	}

	return TrustConfig{
		AnchorPEM:        EncodeCertificatePEM(cert),
		HostnameOverride: override,
	}, nil
}

// EncodeCertificatePEM returns the PEM encoding of a certificate.
func EncodeCertificatePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

// fetchPeerCertificate performs a TLS handshake with address solely to obtain
// the peer's leaf certificate. Verification is skipped on purpose: the caller
// has opted out of standard verification and wants the presented certificate
// as a pinned anchor.
func fetchPeerCertificate(ctx context.Context, address string) (*x509.Certificate, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: handshakeTimeout},
		Config: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // trust-on-first-use fetch
			MinVersion:         tls.VersionTLS12,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("fetch peer certificate from %s: %w", address, err)
	}
	defer func() { _ = conn.Close() }()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("peer %s presented no certificate", address)
	}
	return certs[0], nil
}

// firstDNSSAN returns the first DNS-type Subject Alternative Name entry.
func firstDNSSAN(cert *x509.Certificate) (string, error) {
	if len(cert.DNSNames) == 0 {
		return "", fmt.Errorf("certificate %q has no DNS subject alternative name", cert.Subject)
	}
	return cert.DNSNames[0], nil
}

// systemAnchorBundles lists well-known CA bundle locations, ordered by how
// common they are. The first readable bundle wins.
var systemAnchorBundles = []string{
	"/etc/ssl/certs/ca-certificates.crt", // Debian/Ubuntu/Alpine
	"/etc/pki/tls/certs/ca-bundle.crt",   // Fedora/RHEL
	"/etc/ssl/ca-bundle.pem",             // OpenSUSE
	"/etc/ssl/cert.pem",                  // macOS/BSD
}

// loadSystemAnchors returns the platform trust store as concatenated,
// newline-separated PEM blocks.
func loadSystemAnchors() ([]byte, error) {
	for _, path := range systemAnchorBundles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if containsPEMBlock(data) {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no system CA bundle found in %v", systemAnchorBundles)
}

func containsPEMBlock(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}
