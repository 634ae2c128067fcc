package reality

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
)

type fakeClient struct {
	calls  atomic.Int32
	result *ProbeResult
	err    error
	hang   bool
	panics bool
}

func (f *fakeClient) Probe(ctx context.Context, host string) (*ProbeResult, error) {
	f.calls.Add(1)
	if f.panics {
		panic("client exploded")
	}
	if f.hang {
		// Ignores cancellation on purpose.
		time.Sleep(2 * time.Second)
	}
	return f.result, f.err
}

type fakeBackend struct {
	calls  atomic.Int32
	result *CapabilityResult
	err    error
	hang   bool
	panics bool
}

func (f *fakeBackend) CheckCapability(ctx context.Context, host string) (*CapabilityResult, error) {
	f.calls.Add(1)
	if f.panics {
		panic("backend exploded")
	}
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

func newTestEvaluator(t *testing.T, client ClientProber, backend CapabilityChecker, deadline time.Duration) *Evaluator {
	t.Helper()
	return NewEvaluator(Config{
		Client:   client,
		Backend:  backend,
		Deadline: deadline,
		Logger:   zaptest.NewLogger(t),
	})
}

// newDetachedEvaluator is used where probes outlive the test and must not log
// through t.
func newDetachedEvaluator(client ClientProber, backend CapabilityChecker, deadline time.Duration) *Evaluator {
	return NewEvaluator(Config{Client: client, Backend: backend, Deadline: deadline, Logger: zap.NewNop()})
}

func TestEvaluateMicrosoft(t *testing.T) {
	client := &fakeClient{result: &ProbeResult{Reachable: true, ElapsedMillis: 90}}
	backend := &fakeBackend{result: tls13Backend(120)}
	ev := newTestEvaluator(t, client, backend, time.Second)

	got := ev.Evaluate(context.Background(), "www.microsoft.com")

	assert.True(t, got.IsValid)
	assert.Equal(t, 100, got.ScoreValue())
	assert.Equal(t, MsgPerfect, got.Message)
	assert.Empty(t, got.Warning)
	assert.Equal(t, int32(1), client.calls.Load())
	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestEvaluateMyBank(t *testing.T) {
	client := &fakeClient{result: &ProbeResult{Reachable: true, ElapsedMillis: 90}}
	backend := &fakeBackend{result: tls13Backend(120)}
	ev := newTestEvaluator(t, client, backend, time.Second)

	got := ev.Evaluate(context.Background(), "mybank-login.com:443")

	assert.False(t, got.IsValid)
	assert.Equal(t, 60, got.ScoreValue())
	assert.Equal(t, MsgRiskDetected, got.Message)
	assert.Equal(t, "Behavior risk: Financial domain detected.", got.Warning)
}

func TestEvaluateInvalidFormatSkipsProbes(t *testing.T) {
	client := &fakeClient{result: &ProbeResult{Reachable: true}}
	backend := &fakeBackend{result: tls13Backend(10)}
	ev := newTestEvaluator(t, client, backend, time.Second)

	for _, raw := range []string{"", "not a domain", "localhost", "-x.com", "a.b.c.d.e.123"} {
		got := ev.Evaluate(context.Background(), raw)
		assert.False(t, got.IsValid)
		assert.Equal(t, MsgInvalidFormat, got.Message)
		assert.Nil(t, got.Score)
	}
	assert.Zero(t, client.calls.Load())
	assert.Zero(t, backend.calls.Load())
}

func TestEvaluateBothProbesFail(t *testing.T) {
	client := &fakeClient{err: errors.New("dial failed")}
	backend := &fakeBackend{err: errors.New("backend down")}
	ev := newTestEvaluator(t, client, backend, time.Second)

	got := ev.Evaluate(context.Background(), "example.cn")

	assert.False(t, got.IsValid)
	assert.Nil(t, got.Score)
	assert.Equal(t, MsgCommunicationError, got.Message)
	assert.Equal(t, communicationErrorDetails, got.Details)
	assert.Equal(t, "Region restriction: Mainland China domain detected.", got.Warning)
}

func TestEvaluateBackendAbsentDegrades(t *testing.T) {
	client := &fakeClient{result: &ProbeResult{Reachable: true, ElapsedMillis: 100}}
	backend := &fakeBackend{err: errors.New("unauthorized")}
	ev := newTestEvaluator(t, client, backend, time.Second)

	got := ev.Evaluate(context.Background(), "www.apple.com")

	require.NotNil(t, got.Score)
	assert.False(t, got.IsValid)
	assert.Contains(t, got.Details, "TLS 1.3 detection failed")
	assert.Contains(t, got.Details, "Local Fast (100ms)")
}

func TestEvaluateNilProbers(t *testing.T) {
	ev := newTestEvaluator(t, nil, nil, time.Second)
	got := ev.Evaluate(context.Background(), "www.apple.com")
	assert.Equal(t, MsgCommunicationError, got.Message)
}

func TestEvaluateDeadlineBoundsHangingProbes(t *testing.T) {
	client := &fakeClient{hang: true, result: &ProbeResult{Reachable: true}}
	backend := &fakeBackend{hang: true}
	ev := newDetachedEvaluator(client, backend, 100*time.Millisecond)

	start := time.Now()
	got := ev.Evaluate(context.Background(), "www.microsoft.com")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, MsgCommunicationError, got.Message)
}

func TestEvaluateLateClientIsIgnored(t *testing.T) {
	client := &fakeClient{hang: true, result: &ProbeResult{Reachable: true, ElapsedMillis: 1}}
	backend := &fakeBackend{result: tls13Backend(200)}
	ev := newDetachedEvaluator(client, backend, 150*time.Millisecond)

	got := ev.Evaluate(context.Background(), "www.microsoft.com")

	// Backend alone still gives TLS, latency, compat and premium points.
	assert.Equal(t, 100, got.ScoreValue())
	assert.Contains(t, got.Details, "Server Fast (200ms)")
}

func TestEvaluateRecoversProbePanics(t *testing.T) {
	client := &fakeClient{panics: true}
	backend := &fakeBackend{result: tls13Backend(120)}
	ev := newTestEvaluator(t, client, backend, time.Second)

	got := ev.Evaluate(context.Background(), "www.cloudflare.com")
	assert.True(t, got.IsValid)

	both := newTestEvaluator(t, &fakeClient{panics: true}, &fakeBackend{panics: true}, time.Second)
	got = both.Evaluate(context.Background(), "www.cloudflare.com")
	assert.Equal(t, MsgCommunicationError, got.Message)
}

func TestEvaluateParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := newDetachedEvaluator(&fakeClient{hang: true}, &fakeBackend{hang: true}, 10*time.Second)
	start := time.Now()
	got := ev.Evaluate(ctx, "www.microsoft.com")
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, MsgCommunicationError, got.Message)
}

func TestNewEvaluatorDefaults(t *testing.T) {
	ev := NewEvaluator(Config{})
	assert.Equal(t, consts.DefaultProbeDeadline, ev.Deadline())
	assert.Equal(t, 12*time.Second, ev.Deadline())
}

func TestQuickCheck(t *testing.T) {
	tests := []struct {
		raw         string
		wantValid   bool
		wantMessage string
		wantWarning bool
	}{
		{raw: "www.microsoft.com", wantValid: true, wantMessage: MsgQuickOK},
		{raw: "www.microsoft.com:443", wantValid: true, wantMessage: MsgQuickOK},
		{raw: "example.cn", wantValid: false, wantMessage: MsgQuickRisk, wantWarning: true},
		{raw: "mybank-login.com", wantValid: false, wantMessage: MsgQuickRisk, wantWarning: true},
		{raw: "not a domain", wantValid: false, wantMessage: MsgFormatError},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := QuickCheck(tt.raw)
			assert.Equal(t, tt.wantValid, got.IsValid)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Nil(t, got.Score)
			assert.Equal(t, tt.wantWarning, got.Warning != "")
		})
	}
}
