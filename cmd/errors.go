package cmd

import (
	"errors"
	"fmt"
	"strings"
)

const (
	exitFailure    = 1
	exitUnsuitable = 2
)

// InvalidCandidateError reports input that is not a well-formed domain.
type InvalidCandidateError struct {
	Candidate string
}

func (e *InvalidCandidateError) Error() string {
	if e.Candidate == "" {
		return "no domain given"
	}
	return fmt.Sprintf("%q is not a valid domain", e.Candidate)
}

// UnsuitableDomainError signals that at least one evaluated domain should not
// be used as a camouflage target.
type UnsuitableDomainError struct {
	Domains []string
}

func (e *UnsuitableDomainError) Error() string {
	switch len(e.Domains) {
	case 0:
		return "domain is not a suitable REALITY target"
	case 1:
		return fmt.Sprintf("%s is not a suitable REALITY target", e.Domains[0])
	}
	return fmt.Sprintf("%d domains are not suitable REALITY targets: %s", len(e.Domains), strings.Join(e.Domains, ", "))
}

func exitCode(err error) int {
	var unsuitable *UnsuitableDomainError
	if errors.As(err, &unsuitable) {
		return exitUnsuitable
	}
	return exitFailure
}
