package reality

// ProbeResult is what the client-side reachability probe observed.
type ProbeResult struct {
	Reachable     bool   `json:"reachable" yaml:"reachable"`
	ElapsedMillis int64  `json:"elapsedMillis" yaml:"elapsedMillis"`
	Protocol      string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// CapabilityResult is the authoritative TLS capability report from the backend.
type CapabilityResult struct {
	OK            bool   `json:"ok" yaml:"ok"`
	HasTLS13      bool   `json:"hasTls13" yaml:"hasTls13"`
	KeyExchange   string `json:"keyExchange" yaml:"keyExchange"`
	LatencyMillis int64  `json:"serverLatencyMillis" yaml:"serverLatencyMillis"`
	Message       string `json:"message" yaml:"message"`
}

// EvaluationResult is returned to callers of Evaluate and QuickCheck.
// Score is nil when the evaluation stopped before scoring.
type EvaluationResult struct {
	IsValid bool   `json:"isValid" yaml:"isValid"`
	Score   *int   `json:"score,omitempty" yaml:"score,omitempty"`
	Message string `json:"message" yaml:"message"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// ScoreValue returns the score, or -1 when absent.
func (r EvaluationResult) ScoreValue() int {
	if r.Score == nil {
		return -1
	}
	return *r.Score
}

const (
	MsgInvalidFormat      = "Invalid Domain Format"
	MsgFormatError        = "Format Error"
	MsgNeedsTLS13         = "Reality requires TLS 1.3 support"
	MsgPerfect            = "Perfect camouflage target"
	MsgGood               = "Good for production use"
	MsgRiskDetected       = "Risk detected"
	MsgPassedLowScore     = "Passed, but a higher-scoring domain is recommended."
	MsgCommunicationError = "Communication Error"
	MsgQuickOK            = "OK"
	MsgQuickRisk          = "Risk"

	communicationErrorDetails = "Could not connect to backend or target is blocked"
)

func communicationError(risk RiskVerdict) EvaluationResult {
	return EvaluationResult{
		IsValid: false,
		Message: MsgCommunicationError,
		Details: communicationErrorDetails,
		Warning: risk.Reason,
	}
}
