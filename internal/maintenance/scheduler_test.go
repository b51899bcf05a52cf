package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/output"
)

func logAt(t *testing.T, db *database.DB, nick string, age time.Duration) {
	t.Helper()
	msg := &database.Message{Timestamp: time.Now().Add(-age), Nick: nick, Content: "x"}
	if err := db.LogMessage(msg); err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
}

func TestStart_AppliesRetention(t *testing.T) {
	db := database.NewTestDB(t)
	logAt(t, db, "old", 40*24*time.Hour)
	logAt(t, db, "new", time.Minute)

	s := New(db, output.NopLogger{}, 0, 30)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = s.Stop() }()

	if seen, _ := db.GetLastSeen("old"); seen != nil {
		t.Errorf("message older than retention kept: %+v", seen)
	}
	if seen, _ := db.GetLastSeen("new"); seen == nil {
		t.Error("recent message was deleted")
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() error = nil, want error")
	}
}

func TestStart_ZeroRetentionKeepsEverything(t *testing.T) {
	db := database.NewTestDB(t)
	logAt(t, db, "old", 400*24*time.Hour)

	s := New(db, output.NopLogger{}, 0, 0)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if seen, _ := db.GetLastSeen("old"); seen == nil {
		t.Error("retention 0 removed messages")
	}
	if err := s.Stop(); err == nil {
		t.Error("second Stop() error = nil, want error")
	}
}

func TestRunOnce_Vacuums(t *testing.T) {
	db := database.NewTestDB(t)
	logAt(t, db, "old", 40*24*time.Hour)

	s := New(db, output.NopLogger{}, time.Hour, 30)
	if !s.LastVacuum().IsZero() {
		t.Fatal("LastVacuum() set before any run")
	}
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if s.LastVacuum().IsZero() {
		t.Error("LastVacuum() not updated")
	}
	if seen, _ := db.GetLastSeen("old"); seen != nil {
		t.Error("RunOnce() kept an expired message")
	}
}

func TestPeriodicRun(t *testing.T) {
	db := database.NewTestDB(t)

	s := New(db, output.NopLogger{}, 20*time.Millisecond, 30)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.LastVacuum().IsZero() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.LastVacuum().IsZero() {
		t.Error("periodic run never vacuumed")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
