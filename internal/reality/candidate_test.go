package reality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		raw      string
		wantHost string
		wantPort string
		wantDest string
	}{
		{raw: "www.microsoft.com", wantHost: "www.microsoft.com", wantDest: "www.microsoft.com:443"},
		{raw: "www.microsoft.com:8443", wantHost: "www.microsoft.com", wantPort: "8443", wantDest: "www.microsoft.com:8443"},
		{raw: "  apple.com  ", wantHost: "apple.com", wantDest: "apple.com:443"},
		{raw: "a.com:1:2", wantHost: "a.com", wantPort: "1:2", wantDest: "a.com:1:2"},
		{raw: "", wantHost: "", wantDest: ":443"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := ParseCandidate(tt.raw)
			assert.Equal(t, tt.wantHost, c.Host)
			assert.Equal(t, tt.wantPort, c.Port)
			assert.Equal(t, tt.wantDest, c.Dest())
		})
	}
}

func TestValidFormat(t *testing.T) {
	valid := []string{
		"www.microsoft.com",
		"example.cn",
		"a.io",
		"xn--80ak6aa92e.com",
		"my-site.example.museum",
		"UPPER.COM",
	}
	for _, host := range valid {
		assert.Truef(t, ValidFormat(host), "expected %q to be valid", host)
	}

	invalid := []string{
		"",
		"localhost",
		"-bad.com",
		"bad-.com",
		"no_underscore.com",
		"1.2.3.4",
		"example.c",
		"example.toolong",
		"exa mple.com",
		"example.com.",
		"https://example.com",
	}
	for _, host := range invalid {
		assert.Falsef(t, ValidFormat(host), "expected %q to be invalid", host)
	}
}
