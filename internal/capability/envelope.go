package capability

import (
	"encoding/json"
	"fmt"
	"io"

	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

// Envelope is the wire shape every backend response uses.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     *T     `json:"obj,omitempty"`
}

// Ok wraps obj in a successful envelope.
func Ok[T any](obj T, msg string) Envelope[T] {
	return Envelope[T]{Success: true, Msg: msg, Obj: &obj}
}

// Fail builds an envelope that carries only a reason.
func Fail[T any](msg string) Envelope[T] {
	return Envelope[T]{Success: false, Msg: msg}
}

// Outcome is an envelope after validation: either a payload or a failure
// reason, never both.
type Outcome[T any] struct {
	value  *T
	reason string
}

// Succeeded returns an outcome holding v.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{value: &v}
}

// Failed returns an outcome holding reason.
func Failed[T any](reason string) Outcome[T] {
	return Outcome[T]{reason: reason}
}

// OK reports whether the outcome holds a payload.
func (o Outcome[T]) OK() bool {
	return o.value != nil
}

// Value returns the payload and whether there was one.
func (o Outcome[T]) Value() (T, bool) {
	if o.value == nil {
		var zero T
		return zero, false
	}
	return *o.value, true
}

// Reason returns the failure reason, empty for a successful outcome.
func (o Outcome[T]) Reason() string {
	return o.reason
}

// Outcome validates the envelope. success=true without a payload is a failure.
func (e Envelope[T]) Outcome() Outcome[T] {
	switch {
	case !e.Success:
		reason := e.Msg
		if reason == "" {
			reason = "request failed"
		}
		return Failed[T](reason)
	case e.Obj == nil:
		return Failed[T](sharederrors.ErrMissingPayload.Error())
	default:
		return Succeeded(*e.Obj)
	}
}

// Decode reads one envelope from r. Malformed JSON is an error; everything
// else is reported through the outcome.
func Decode[T any](r io.Reader) (Outcome[T], error) {
	var env Envelope[T]
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Outcome[T]{}, fmt.Errorf("%w: %v", sharederrors.ErrMalformedEnvelope, err)
	}
	return env.Outcome(), nil
}
