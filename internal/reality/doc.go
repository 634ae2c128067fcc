// Package reality decides whether a hostname is a usable REALITY camouflage target.
//
// Architecture overview:
//
//   - ParseCandidate and ValidFormat reject malformed host[:port] input before any
//     network activity happens.
//   - AssessRisk maps a host onto a single RiskVerdict using static rule tables
//     (first match wins). IsPremium checks the curated allow-list.
//   - Evaluator fans out a ClientProber and a CapabilityChecker under one shared
//     deadline and joins them; a probe that misses the deadline is treated as
//     absent, never as an error.
//   - Synthesize turns the risk verdict and the (possibly absent) probe results
//     into an EvaluationResult with a 0-100 score.
//   - QuickCheck is the offline subset (format + risk) for as-you-type feedback.
//
// The rule tables are package-level and never mutated, so concurrent evaluations
// share nothing else.
package reality
