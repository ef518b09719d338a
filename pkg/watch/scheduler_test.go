package watch

import (
	"context"
	"testing"
	"time"
)

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	if _, err := NewScheduler("every tuesday", func(context.Context) {}, nil); err == nil {
		t.Fatal("NewScheduler() error = nil, want invalid schedule")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler("*/5 * * * *", func(context.Context) {}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if s.NextRun() != nil {
		t.Error("NextRun() before Start should be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start() error = nil, want already running")
	}

	next := s.NextRun()
	if next == nil {
		t.Fatal("NextRun() = nil while running")
	}
	if until := time.Until(*next); until <= 0 || until > 5*time.Minute {
		t.Errorf("next run in %v, want within 5 minutes", until)
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s, err := NewScheduler("@every 1h", func(context.Context) {}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_RunsJob(t *testing.T) {
	ran := make(chan struct{}, 1)
	s, err := NewScheduler("@every 1s", func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}
