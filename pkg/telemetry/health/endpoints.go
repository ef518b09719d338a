package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler serves the liveness probe. It always answers 200.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler serves the readiness probe. It answers 503 when any
// check fails:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "history": {"status": "ok"},
//	        "batches": {"status": "unhealthy", "message": "1 batch(es) not passing: runs.yaml (failed)"}
//	    },
//	    "timestamp": "2026-03-01T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if status.Status != StatusReady {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// StatusHandler serves the latest verdict of every tracked batch.
func (t *Tracker) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, t.Snapshot())
	}
}

// VersionHandler serves build information.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Register adds the standard endpoints to mux:
//   - /health: liveness
//   - /ready: readiness
//   - /status: per-batch verdicts (when tracker is non-nil)
//   - /version: build information
func Register(mux *http.ServeMux, checker *Checker, tracker *Tracker, info VersionInfo) {
	mux.HandleFunc("/health", checker.LivenessHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	if tracker != nil {
		mux.HandleFunc("/status", tracker.StatusHandler())
	}
	mux.HandleFunc("/version", VersionHandler(info.Version, info.Commit, info.BuildTime))
}

func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
