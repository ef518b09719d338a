package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bubu-hq/verifier/pkg/config"
	"bubu-hq/verifier/pkg/telemetry/logging"
	"bubu-hq/verifier/pkg/verifier"

	"golang.org/x/sync/singleflight"
)

// ReportFunc receives the outcome of every verification a session performs.
// Exactly one of report and err is non-nil.
type ReportFunc func(path string, report *verifier.Report, err error)

// SessionConfig configures a watch session.
type SessionConfig struct {
	// Path is a batch file or a directory of batch files.
	Path string

	Runner   *verifier.Runner
	Settings config.WatchConfig
	Logger   *logging.Logger
	OnReport ReportFunc
}

// Session re-verifies batch files on change and on schedule.
type Session struct {
	path     string
	dir      bool
	runner   *verifier.Runner
	settings config.WatchConfig
	base     *logging.Logger
	logger   *logging.Logger
	onReport ReportFunc

	// Keyed by file path; a change event and a scheduled tick arriving
	// together run one verification.
	flight singleflight.Group
}

// NewSession checks the target path and builds a session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Runner == nil {
		return nil, errors.New("watch session requires a runner")
	}
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %q: %w", cfg.Path, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	onReport := cfg.OnReport
	if onReport == nil {
		onReport = func(string, *verifier.Report, error) {}
	}
	settings := cfg.Settings
	if len(settings.Extensions) == 0 {
		settings.Extensions = append([]string(nil), config.DefaultWatchExtensions...)
	}

	return &Session{
		path:     cfg.Path,
		dir:      info.IsDir(),
		runner:   cfg.Runner,
		settings: settings,
		base:     logger,
		logger:   logger.WithComponent("watch"),
		onReport: onReport,
	}, nil
}

// Targets lists the batch files the session verifies, sorted.
func (s *Session) Targets() ([]string, error) {
	if !s.dir {
		return []string{s.path}, nil
	}

	var targets []string
	err := filepath.WalkDir(s.path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != s.path && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.matches(path) {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list batch files in %q: %w", s.path, err)
	}
	sort.Strings(targets)
	return targets, nil
}

func (s *Session) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.settings.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Verify verifies one batch file and reports the outcome. Concurrent calls
// for the same path share a single run.
func (s *Session) Verify(ctx context.Context, path string) (*verifier.Report, error) {
	v, err, shared := s.flight.Do(path, func() (any, error) {
		report, err := s.runner.RunFile(ctx, path)
		s.onReport(path, report, err)
		return report, err
	})
	if shared {
		s.logger.Debug("verification coalesced", "path", path)
	}
	report, _ := v.(*verifier.Report)
	return report, err
}

// VerifyAll verifies every target once.
func (s *Session) VerifyAll(ctx context.Context) {
	targets, err := s.Targets()
	if err != nil {
		s.logger.Error("failed to list targets", "error", err)
		return
	}
	for _, path := range targets {
		if ctx.Err() != nil {
			return
		}
		_, _ = s.Verify(ctx, path)
	}
}

// Run verifies all targets, then keeps them verified until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.VerifyAll(ctx)

	if s.settings.Schedule != "" {
		scheduler, err := NewScheduler(s.settings.Schedule, s.VerifyAll, s.base)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	watcherConfig := DefaultFileWatcherConfig()
	watcherConfig.Path = s.path
	watcherConfig.Extensions = s.settings.Extensions
	if s.settings.Debounce > 0 {
		watcherConfig.DebounceInterval = s.settings.Debounce
	}

	watcher, err := NewFileWatcher(watcherConfig, s.base)
	if err != nil {
		return err
	}

	return watcher.Watch(ctx, func(paths []string) {
		for _, path := range paths {
			if s.dir {
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					s.logger.Debug("batch file removed", "path", path)
					continue
				}
			}
			_, _ = s.Verify(ctx, path)
		}
	})
}
