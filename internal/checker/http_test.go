package checker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

func newTLSTestServer(t *testing.T, h2 bool, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(handler)
	srv.EnableHTTP2 = h2
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

func trustingChecker(srv *httptest.Server) *HTTPChecker {
	transport := srv.Client().Transport.(*http.Transport)
	return &HTTPChecker{
		Timeout:   2 * time.Second,
		TLSConfig: transport.TLSClientConfig,
	}
}

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "https://")
}

func TestHTTPChecker_Name(t *testing.T) {
	checker := &HTTPChecker{}
	if got := checker.Name(); got != "check http" {
		t.Errorf("HTTPChecker.Name() = %v, want %v", got, "check http")
	}
}

func TestHTTPChecker_CheckAnyStatusIsOK(t *testing.T) {
	var method, userAgent string
	srv := newTLSTestServer(t, false, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		userAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusForbidden)
	})

	checker := trustingChecker(srv)
	checker.UserAgent = "custom-agent"
	result := checker.Check(context.Background(), hostOf(srv))

	if !result.OK() {
		t.Fatalf("expected ok status, got %s (%s)", result.Status, result.Error)
	}
	if result.HTTPStatus != http.StatusForbidden {
		t.Errorf("HTTPStatus = %d, want 403", result.HTTPStatus)
	}
	if method != http.MethodHead {
		t.Errorf("method = %s, want HEAD", method)
	}
	if userAgent != "custom-agent" {
		t.Errorf("User-Agent = %q, want custom-agent", userAgent)
	}
	if result.TLSVersion == "" {
		t.Error("expected TLS version to be recorded")
	}
}

func TestHTTPChecker_DefaultsToBrowserUserAgent(t *testing.T) {
	var userAgent string
	srv := newTLSTestServer(t, false, func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	})

	result := trustingChecker(srv).Check(context.Background(), hostOf(srv))
	if !result.OK() {
		t.Fatalf("expected ok status, got %s (%s)", result.Status, result.Error)
	}
	if userAgent != consts.DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", userAgent, consts.DefaultUserAgent)
	}
	if !strings.HasPrefix(userAgent, "Mozilla/5.0 ") {
		t.Errorf("default User-Agent should look like a browser, got %q", userAgent)
	}
}

func TestHTTPChecker_NegotiatesHTTP2(t *testing.T) {
	srv := newTLSTestServer(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	result := trustingChecker(srv).Check(context.Background(), hostOf(srv))
	if result.Protocol != "HTTP/2.0" {
		t.Errorf("Protocol = %q, want HTTP/2.0", result.Protocol)
	}
}

func TestHTTPChecker_DoesNotFollowRedirects(t *testing.T) {
	srv := newTLSTestServer(t, false, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://unreachable.invalid/", http.StatusFound)
	})

	result := trustingChecker(srv).Check(context.Background(), hostOf(srv))
	if result.HTTPStatus != http.StatusFound {
		t.Errorf("HTTPStatus = %d, want 302", result.HTTPStatus)
	}
}

func TestHTTPChecker_ProbeReachable(t *testing.T) {
	srv := newTLSTestServer(t, false, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	res, err := trustingChecker(srv).Probe(context.Background(), hostOf(srv))
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !res.Reachable {
		t.Error("expected reachable")
	}
	if res.ElapsedMillis < 0 {
		t.Errorf("ElapsedMillis = %d, want >= 0", res.ElapsedMillis)
	}
}

func TestHTTPChecker_ProbeUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	res, err := (&HTTPChecker{Timeout: time.Second}).Probe(context.Background(), addr)
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
	if !errors.Is(err, sharederrors.ErrTargetUnreachable) {
		t.Errorf("error = %v, want ErrTargetUnreachable", err)
	}
}

func TestHTTPChecker_ProbeCancelled(t *testing.T) {
	srv := newTLSTestServer(t, false, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := trustingChecker(srv).Probe(ctx, hostOf(srv))
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
	if !errors.Is(err, sharederrors.ErrProbeTimeout) {
		t.Errorf("error = %v, want ErrProbeTimeout", err)
	}
}
