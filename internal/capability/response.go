package capability

import (
	"github.com/khanhnv2901/reality-check/internal/checker"
	"github.com/khanhnv2901/reality-check/internal/reality"
)

// Request is the body of POST /inbound/check-reality.
type Request struct {
	Domain string `json:"domain"`
}

// Response is the capability payload carried in an Envelope.
type Response struct {
	IsValid     bool   `json:"is_valid"`
	HasTLS13    bool   `json:"has_tls13"`
	KeyExchange string `json:"key_exchange"`
	Latency     int64  `json:"latency"`
	Message     string `json:"message"`
}

// ToResult converts the wire payload into the evaluator's input.
func (r Response) ToResult() *reality.CapabilityResult {
	return &reality.CapabilityResult{
		OK:            r.IsValid,
		HasTLS13:      r.HasTLS13,
		KeyExchange:   r.KeyExchange,
		LatencyMillis: r.Latency,
		Message:       r.Message,
	}
}

// FromReport builds the wire payload from a probe report.
func FromReport(rep checker.CapabilityReport) Response {
	return Response{
		IsValid:     rep.HasTLS13,
		HasTLS13:    rep.HasTLS13,
		KeyExchange: rep.KeyExchange,
		Latency:     rep.LatencyMillis(),
		Message:     rep.Message,
	}
}
