package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"StockPulse/internal/recorder"
)

func TestRun_StartupErrorsAreReturned(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stockpulse.db")

	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("DATA_SOURCE", "mock")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("WATCHLIST", "AAPL")
	t.Setenv("CRON_RANK", "not a cron")
	t.Setenv("LOG_LEVEL", "error")

	err := run()
	if err == nil || !strings.Contains(err.Error(), "register cron tasks") {
		t.Fatalf("run() = %v, want cron registration error", err)
	}

	// The recorder opened before the failure must have been closed and left usable.
	rec, err := recorder.NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatalf("reopen recorder: %v", err)
	}
	rec.Close()
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	if err := run(); err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("run() = %v, want load config error", err)
	}
}
