package reality

import (
	"regexp"
	"strings"
)

// hostnamePattern accepts dot-separated labels of 1-63 alphanumeric/hyphen
// characters (no leading or trailing hyphen) ending in a 2-6 letter TLD.
var hostnamePattern = regexp.MustCompile(`(?i)^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,6}$`)

// Candidate is a host[:port] string split into its parts.
// Only Host takes part in evaluation; Port is carried for callers that build a
// REALITY dest from it.
type Candidate struct {
	Raw  string
	Host string
	Port string
}

// ParseCandidate splits raw on the first ':' into host and port.
func ParseCandidate(raw string) Candidate {
	raw = strings.TrimSpace(raw)
	c := Candidate{Raw: raw, Host: raw}
	if idx := strings.Index(raw, ":"); idx >= 0 {
		c.Host = raw[:idx]
		c.Port = raw[idx+1:]
	}
	return c
}

// Dest returns the candidate as host:port, defaulting the port to 443.
func (c Candidate) Dest() string {
	port := c.Port
	if port == "" {
		port = "443"
	}
	return c.Host + ":" + port
}

// ValidFormat reports whether host is a syntactically valid hostname.
func ValidFormat(host string) bool {
	if host == "" {
		return false
	}
	return hostnamePattern.MatchString(host)
}
