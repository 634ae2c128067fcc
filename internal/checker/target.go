package checker

import (
	"net"
	"net/url"
	"strings"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
)

// TargetInfo contains parsed target information
type TargetInfo struct {
	Original string // Original target string
	Host     string // Hostname (without scheme, path, port)
	Port     string // Port, defaulting to 443
	Address  string // host:port for dialing
	URL      string // https URL used for probe requests
}

// ParseTarget parses a target string into structured components.
// Probes always speak HTTPS, so any scheme on the input is discarded:
//   - example.com
//   - https://example.com/path
//   - example.com:8443
func ParseTarget(target string) *TargetInfo {
	info := &TargetInfo{Original: target}

	raw := strings.TrimSpace(target)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	if parsed, err := url.Parse(raw); err == nil {
		info.Host = parsed.Hostname()
		info.Port = parsed.Port()
	}

	// Fallback: extract host manually
	if info.Host == "" {
		host := strings.TrimSpace(target)
		if idx := strings.Index(host, "://"); idx >= 0 {
			host = host[idx+3:]
		}
		host = strings.Split(host, "/")[0]
		parts := strings.SplitN(host, ":", 2)
		info.Host = parts[0]
		if len(parts) > 1 {
			info.Port = parts[1]
		}
	}

	if info.Port == "" {
		info.Port = consts.DefaultHTTPSPort
	}
	info.Address = net.JoinHostPort(info.Host, info.Port)

	u := url.URL{Scheme: "https", Host: info.Host, Path: "/"}
	if info.Port != consts.DefaultHTTPSPort {
		u.Host = info.Address
	}
	info.URL = u.String()

	return info
}

// ExtractHost extracts just the hostname from a target.
func ExtractHost(target string) string {
	return ParseTarget(target).Host
}
