package errors

import "errors"

// Domain errors
var (
	// Candidate errors
	ErrEmptyDomain    = errors.New("domain cannot be empty")
	ErrInvalidDomain  = errors.New("invalid domain format")
	ErrTooManyDomains = errors.New("too many domains in one request")

	// Probe errors
	ErrTargetUnreachable = errors.New("target unreachable")
	ErrProbeTimeout      = errors.New("probe timed out")
	ErrNXDomain          = errors.New("domain does not exist")
	ErrNoNameservers     = errors.New("no nameservers configured")
	ErrNoAddresses       = errors.New("no addresses found")

	// Capability backend errors
	ErrBackendUnavailable = errors.New("capability backend unavailable")
	ErrBackendRejected    = errors.New("capability backend rejected request")
	ErrMalformedEnvelope  = errors.New("malformed response envelope")
	ErrMissingPayload     = errors.New("response envelope has no payload")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
