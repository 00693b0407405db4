package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/stepr/internal/store"
)

func isolateDirs(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestSetupLoggingSetsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	log := setupLogging()
	if slog.Default() != log {
		t.Fatal("worker messages through slog's default must hit the same handler")
	}
}

func TestSyncCommandSkipsWithoutPermissions(t *testing.T) {
	isolateDirs(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"sync"})
	// Fresh store: available, permission not granted. A skip is a success,
	// not a retry, so Execute returns cleanly instead of exiting 75.
	if err := cmd.Execute(); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestImportCommand(t *testing.T) {
	isolateDirs(t)

	src := filepath.Join(t.TempDir(), "records.json")
	payload := `[
		{"id":"a","source_id":"com.vendor.health","start_time":"2025-06-10T09:05:00Z","end_time":"2025-06-10T09:06:00Z","count":120},
		{"id":"a","source_id":"com.vendor.health","start_time":"2025-06-10T09:05:00Z","end_time":"2025-06-10T09:06:00Z","count":120}
	]`
	if err := os.WriteFile(src, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"import", src})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("import: %v", err)
	}

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	s, err := store.New(dbPath, store.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	n, err := s.CountRecords()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("records = %d, want 1 (duplicate ID ignored)", n)
	}
}

func TestImportCommandBadFile(t *testing.T) {
	isolateDirs(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"import", filepath.Join(t.TempDir(), "missing.json")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("import of a missing file should fail")
	}
}
