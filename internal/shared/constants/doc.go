// Package constants centralizes defaults shared across the CLI, the API server
// and the probes.
//
// Keeping timeouts and limits here lets cmd/ and internal/ reference the same
// values without introducing import cycles.
package constants
