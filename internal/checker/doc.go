// Package checker holds the network probes used to evaluate REALITY targets.
//
// Architecture overview:
//
//   - Checkers implement the Checker interface (Check + Name). HTTPChecker is
//     the client-side reachability probe; TLS13Checker is the authoritative
//     TLS 1.3 capability probe run by the backend.
//   - Runner coordinates concurrent execution with rate limiting and keeps
//     results in input order, so batch evaluations stay aligned with their input.
//   - Resolver resolves through explicit nameservers with miekg/dns when the
//     probe should reflect a specific resolver vantage point.
//   - ParseTarget normalizes the many shapes a target can take into a host,
//     port and https URL.
package checker
