package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPruneLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"server-2026-01-01T00-00-00.log",
		"server-2026-01-02T00-00-00.log",
		"server-2026-01-03T00-00-00.log",
		"provision-2025-01-01T00-00-00.log",
		"unrelated.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := pruneLogs(dir, "server", 2); err != nil {
		t.Fatalf("pruneLogs() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest server log should be removed")
	}
	for _, n := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s should remain: %v", n, err)
		}
	}
}

func TestNewLogger_WritesToStdoutAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := &Config{Environment: "dev", LogDir: dir, LogMaxFiles: 3}

	var stdout bytes.Buffer
	logger, closeFn, err := NewLogger(cfg, "server", &stdout)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("hello", "folder_id", "f1")
	if err := closeFn(); err != nil {
		t.Fatalf("close error = %v", err)
	}

	if !strings.Contains(stdout.String(), `"folder_id":"f1"`) {
		t.Errorf("stdout = %q, want JSON record with folder_id", stdout.String())
	}

	files, _ := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if len(files) != 1 {
		t.Fatalf("log files = %v, want exactly one", files)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file = %q, want the debug record", data)
	}
}

func TestNewLogger_InfoLevelOutsideDev(t *testing.T) {
	var stdout bytes.Buffer
	logger, closeFn, err := NewLogger(&Config{Environment: "prod"}, "server", &stdout)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	if stdout.Len() != 0 {
		t.Errorf("debug record written outside dev: %q", stdout.String())
	}
}
