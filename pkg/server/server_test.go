package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bubu-hq/verifier/pkg/config"
	"bubu-hq/verifier/pkg/telemetry/health"
	"bubu-hq/verifier/pkg/telemetry/metrics"
)

func newCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	return metrics.NewCollector(&config.MetricsConfig{Enabled: true}, nil)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{Address: ":0"}, nil, nil, nil, nil)

	if s.config.MetricsPath != "/metrics" {
		t.Errorf("MetricsPath = %q, want /metrics", s.config.MetricsPath)
	}
	if s.config.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v", s.config.ShutdownTimeout)
	}
	if s.checker == nil || s.logger == nil {
		t.Error("checker and logger must default")
	}
	if s.Addr() != "" || s.IsRunning() {
		t.Error("server should not be running before Start")
	}
}

func TestHandler_Routes(t *testing.T) {
	collector := newCollector(t)
	collector.RecordRun(metrics.ResultFailed, 20*time.Millisecond, 1)

	tracker := health.NewTracker()
	checker := health.New(time.Second)
	checker.RegisterCheck("batches", tracker.Check)
	tracker.Failed("batch.json", "run-1", 1, 2)

	s := New(Config{MetricsPath: "/custom-metrics"}, collector, checker, tracker, nil)
	handler := s.Handler()

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/custom-metrics", http.StatusOK, "bubu_verifier_runs_total"},
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/ready", http.StatusServiceUnavailable, "batch.json (failed)"},
		{"/status", http.StatusOK, `"verdict":"failed"`},
		{"/version", http.StatusOK, "go_version"},
		{"/metrics", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_NoCollectorNoTracker(t *testing.T) {
	handler := New(Config{}, nil, nil, nil, nil).Handler()

	for path, want := range map[string]int{
		"/metrics": http.StatusNotFound,
		"/status":  http.StatusNotFound,
		"/ready":   http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s code = %d, want %d", path, rec.Code, want)
		}
	}
}

func TestRecovery(t *testing.T) {
	s := New(Config{}, nil, nil, nil, nil)
	handler := s.recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
}

func TestStart_ServesAndShutsDown(t *testing.T) {
	s := New(Config{Address: "127.0.0.1:0", ShutdownTimeout: time.Second}, newCollector(t), nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	select {
	case <-s.Ready():
	case err := <-done:
		t.Fatalf("Start() returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	if !s.IsRunning() {
		t.Error("IsRunning() = false after Ready")
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("GET /health = %d %q", resp.StatusCode, body)
	}

	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() should fail while running")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestStart_ListenError(t *testing.T) {
	s := New(Config{Address: "256.0.0.1:bad"}, nil, nil, nil, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() with an invalid address should fail")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after listen failure")
	}
}
