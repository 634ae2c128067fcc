package checker

import (
	"crypto/tls"
	"fmt"
)

// tlsVersionString converts TLS version constant to string
func tlsVersionString(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

// curveName returns the negotiated key exchange group, or "" when the
// connection did not report one (resumed sessions, non-ECDHE suites).
func curveName(id tls.CurveID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
