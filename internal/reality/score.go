package reality

import (
	"fmt"
	"strings"
)

const (
	tls13Points         = 40
	fastLatencyPoints   = 30
	normalLatencyPoints = 20
	compatPoints        = 20
	premiumPoints       = 10

	fastLatencyMillis   = 300
	normalLatencyMillis = 1000

	minValidScore = 50

	defaultKeyExchange = "X25519"
	detailSeparator    = " | "
)

// Inputs carries everything the synthesizer reads. Client and Backend are nil
// when the corresponding probe produced no result.
type Inputs struct {
	Risk    RiskVerdict
	Premium bool
	Client  *ProbeResult
	Backend *CapabilityResult
}

// Synthesize scores the inputs and picks the verdict message.
func Synthesize(in Inputs) EvaluationResult {
	score := 0
	var lines []string

	hasTLS13 := in.Backend != nil && in.Backend.HasTLS13
	if hasTLS13 {
		score += tls13Points
		kex := in.Backend.KeyExchange
		if kex == "" {
			kex = defaultKeyExchange
		}
		lines = append(lines, "TLS 1.3 | "+kex)
	} else {
		msg := "TLS 1.3 detection failed"
		if in.Backend != nil && in.Backend.Message != "" {
			msg = in.Backend.Message
		}
		lines = append(lines, msg)
	}

	if latency, source, ok := effectiveLatency(in.Client, in.Backend); ok {
		points, tier := LatencyTier(latency)
		score += points
		switch tier {
		case TierFast:
			lines = append(lines, fmt.Sprintf("%s Fast (%dms)", source, latency))
		case TierNormal:
			lines = append(lines, fmt.Sprintf("Normal (%dms)", latency))
		default:
			lines = append(lines, fmt.Sprintf("High Latency (%dms)", latency))
		}
	}

	clientResponded := in.Client != nil && in.Client.Reachable
	if clientResponded || in.Premium || hasTLS13 {
		score += compatPoints
		lines = append(lines, "H2/H3 Compatible")
	}

	if in.Premium {
		score += premiumPoints
		lines = append(lines, "Premium Node")
	}

	score -= in.Risk.Penalty
	if score < 0 {
		score = 0
	}

	return EvaluationResult{
		IsValid: IsValidTarget(hasTLS13, in.Risk.IsRisk, score),
		Score:   &score,
		Message: verdictMessage(in.Backend, hasTLS13, in.Risk.IsRisk, score),
		Details: strings.Join(lines, detailSeparator),
		Warning: in.Risk.Reason,
	}
}

// IsValidTarget requires TLS 1.3, no risk flag and a score of at least 50.
func IsValidTarget(hasTLS13, isRisk bool, score int) bool {
	return hasTLS13 && !isRisk && score >= minValidScore
}

// LatencyClass is the bucket an effective latency falls into.
type LatencyClass string

const (
	TierFast   LatencyClass = "fast"
	TierNormal LatencyClass = "normal"
	TierHigh   LatencyClass = "high"
)

// LatencyTier returns the points awarded for a latency in milliseconds.
func LatencyTier(millis int64) (int, LatencyClass) {
	switch {
	case millis < fastLatencyMillis:
		return fastLatencyPoints, TierFast
	case millis < normalLatencyMillis:
		return normalLatencyPoints, TierNormal
	default:
		return 0, TierHigh
	}
}

// effectiveLatency prefers the server-observed latency when the backend reached
// the target with a non-zero latency, then the client's elapsed time. A failed
// backend attempt with no client result gives no latency signal at all.
func effectiveLatency(client *ProbeResult, backend *CapabilityResult) (int64, string, bool) {
	if backend != nil && backend.OK && backend.LatencyMillis > 0 {
		return backend.LatencyMillis, "Server", true
	}
	if client != nil {
		return client.ElapsedMillis, "Local", true
	}
	return 0, "", false
}

func verdictMessage(backend *CapabilityResult, hasTLS13, isRisk bool, score int) string {
	switch {
	case backend != nil && !hasTLS13:
		return MsgNeedsTLS13
	case score >= 90:
		return MsgPerfect
	case score >= 70:
		return MsgGood
	case isRisk:
		return MsgRiskDetected
	default:
		return MsgPassedLowScore
	}
}
