package constants

import "time"

const (
	// DefaultProbeDeadline bounds the network phase of a full evaluation.
	DefaultProbeDeadline = 12 * time.Second
	// StrictProbeTimeout limits the TLS 1.3-only capability handshake.
	StrictProbeTimeout = 6 * time.Second
	// DiagnosticProbeTimeout limits the fallback probe that explains a failure.
	DiagnosticProbeTimeout = 5 * time.Second
	// DefaultBatchTimeout bounds one batch request as a whole.
	DefaultBatchTimeout = 60 * time.Second
	// DNSQueryTimeout applies to each query sent to a custom nameserver.
	DNSQueryTimeout = 3 * time.Second
)

const (
	// DefaultHTTPSPort is used when a candidate carries no explicit port.
	DefaultHTTPSPort = "443"
	// DefaultDNSPort is appended to nameservers given without a port.
	DefaultDNSPort = "53"
	// MaxBatchDomains caps a single batch evaluation request.
	MaxBatchDomains = 50
	// MaxRequestBodyBytes caps JSON request bodies accepted by the API.
	MaxRequestBodyBytes = 64 << 10
	// DefaultUserAgent is sent by every probe request; it matches desktop Chrome.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)
