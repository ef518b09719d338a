package watch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"bubu-hq/verifier/pkg/config"
	"bubu-hq/verifier/pkg/verifier"
)

type reportLog struct {
	mu      sync.Mutex
	entries []reportEntry
	notify  chan string
}

type reportEntry struct {
	path   string
	report *verifier.Report
	err    error
}

func newReportLog() *reportLog {
	return &reportLog{notify: make(chan string, 64)}
}

func (l *reportLog) record(path string, report *verifier.Report, err error) {
	l.mu.Lock()
	l.entries = append(l.entries, reportEntry{path: path, report: report, err: err})
	l.mu.Unlock()
	l.notify <- path
}

func (l *reportLog) snapshot() []reportEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]reportEntry(nil), l.entries...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewSession_Errors(t *testing.T) {
	runner := verifier.NewRunner(nil, verifier.Options{})

	if _, err := NewSession(SessionConfig{Path: t.TempDir()}); err == nil {
		t.Error("NewSession() without runner error = nil")
	}
	missing := filepath.Join(t.TempDir(), "nope.json")
	if _, err := NewSession(SessionConfig{Path: missing, Runner: runner}); err == nil {
		t.Error("NewSession() with missing path error = nil")
	}
}

func TestSession_Targets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "[]")
	writeFile(t, filepath.Join(dir, "a.json"), "[]")
	writeFile(t, filepath.Join(dir, "nested", "c.YML"), "[]")
	writeFile(t, filepath.Join(dir, "readme.md"), "#")
	writeFile(t, filepath.Join(dir, ".hidden.json"), "[]")
	writeFile(t, filepath.Join(dir, ".git", "d.json"), "[]")

	session, err := NewSession(SessionConfig{
		Path:   dir,
		Runner: verifier.NewRunner(nil, verifier.Options{}),
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	got, err := session.Targets()
	if err != nil {
		t.Fatalf("Targets() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.YML"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
}

func TestSession_Targets_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), "[]")
	writeFile(t, filepath.Join(dir, "b.yaml"), "[]")

	session, err := NewSession(SessionConfig{
		Path:     dir,
		Runner:   verifier.NewRunner(nil, verifier.Options{}),
		Settings: config.WatchConfig{Extensions: []string{".json"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := session.Targets()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(dir, "a.json") {
		t.Errorf("Targets() = %v, want only a.json", got)
	}
}

func TestSession_Targets_SingleFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "batch.txt")
	writeFile(t, file, "[]")

	session, err := NewSession(SessionConfig{
		Path:   file,
		Runner: verifier.NewRunner(nil, verifier.Options{}),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := session.Targets()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != file {
		t.Errorf("Targets() = %v, want [%s]", got, file)
	}
}

func TestSession_VerifyAll_ReportsEachTarget(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, good, "[]")
	writeFile(t, bad, `[{}]`)
	writeFile(t, broken, "experiment: 1\n")

	log := newReportLog()
	session, err := NewSession(SessionConfig{
		Path:     dir,
		Runner:   verifier.NewRunner(nil, verifier.Options{}),
		OnReport: log.record,
	})
	if err != nil {
		t.Fatal(err)
	}

	session.VerifyAll(context.Background())

	entries := log.snapshot()
	if len(entries) != 3 {
		t.Fatalf("got %d reports, want 3", len(entries))
	}
	byPath := map[string]reportEntry{}
	for _, e := range entries {
		byPath[e.path] = e
	}

	if e := byPath[good]; e.err != nil || e.report == nil || e.report.Failed() {
		t.Errorf("good batch: report=%v err=%v, want passing report", e.report, e.err)
	}
	if e := byPath[bad]; e.err != nil || e.report == nil || !e.report.Failed() {
		t.Errorf("bad batch: report=%v err=%v, want failing report", e.report, e.err)
	}
	if e := byPath[broken]; e.err == nil || e.report != nil {
		t.Errorf("broken batch: report=%v err=%v, want input error", e.report, e.err)
	}
}

func TestSession_VerifyAll_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), "[]")
	writeFile(t, filepath.Join(dir, "b.json"), "[]")

	log := newReportLog()
	session, err := NewSession(SessionConfig{
		Path:     dir,
		Runner:   verifier.NewRunner(nil, verifier.Options{}),
		OnReport: log.record,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session.VerifyAll(ctx)

	if n := len(log.snapshot()); n != 0 {
		t.Errorf("got %d reports after cancel, want 0", n)
	}
}

func TestSession_Run_ReverifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.json")
	writeFile(t, batch, "[]")

	log := newReportLog()
	session, err := NewSession(SessionConfig{
		Path:     batch,
		Runner:   verifier.NewRunner(nil, verifier.Options{}),
		Settings: config.WatchConfig{Debounce: 20 * time.Millisecond},
		OnReport: log.record,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	select {
	case <-log.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("initial verification not reported")
	}

	// Let the watcher register before changing the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, batch, `[{}]`)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-log.notify:
		case <-deadline:
			t.Fatal("change did not trigger a failing verification")
		}
		entries := log.snapshot()
		last := entries[len(entries)-1]
		if last.report != nil && last.report.Failed() {
			break
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestSession_Run_InvalidSchedule(t *testing.T) {
	file := filepath.Join(t.TempDir(), "batch.json")
	writeFile(t, file, "[]")

	session, err := NewSession(SessionConfig{
		Path:     file,
		Runner:   verifier.NewRunner(nil, verifier.Options{}),
		Settings: config.WatchConfig{Schedule: "sometimes"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := session.Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want invalid schedule error")
	}
}
