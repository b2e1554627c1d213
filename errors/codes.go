package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction-time errors
const (
	// ErrCodeConnection indicates a socket-level or trust-resolution failure
	// while building a channel.
	ErrCodeConnection ErrorCode = "CONNECTION_ERROR"
	// ErrCodeCertificateParse indicates the peer certificate could not be
	// parsed or lacks a usable Subject Alternative Name.
	ErrCodeCertificateParse ErrorCode = "CERTIFICATE_PARSE_ERROR"
)

// Call-time errors
const (
	// ErrCodeCall is the normalized form of any transport-level failure status.
	ErrCodeCall ErrorCode = "CALL_ERROR"
	// ErrCodeUnavailable indicates the service stayed unavailable after the
	// transport retry policy exhausted its attempts.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnection:  true,
	ErrCodeUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
