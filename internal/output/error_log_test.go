package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestErrorLogger_LogError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	l := NewErrorLogger(path)

	entry := Entry{Type: "Protocol", Message: "nickname in use", Source: "irc.example.net", Err: fmt.Errorf("433")}
	if err := l.Write(entry); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)

	for _, want := range []string{"ERROR: nickname in use", "Type: Protocol", "Source: irc.example.net", "Details: 433", "Stack Trace:", "TestErrorLogger_LogError"} {
		if !strings.Contains(content, want) {
			t.Errorf("log entry missing %q, got:\n%s", want, content)
		}
	}
	if strings.Contains(content, "output.(*ErrorLogger)") {
		t.Errorf("stack trace includes logger frames:\n%s", content)
	}
}

func TestErrorLogger_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	l := NewErrorLoggerWithLimits(path, 1, 2)
	// Force a tiny threshold so every entry rotates.
	l.maxSize = 1

	for i := 0; i < 4; i++ {
		if err := l.LogError("Transport", fmt.Sprintf("entry %d", i), nil); err != nil {
			t.Fatalf("LogError() error = %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected %s.1 to exist: %v", path, err)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("expected %s.2 to exist: %v", path, err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("expected %s.3 to be pruned, stat err = %v", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "entry 3") {
		t.Errorf("current log should hold the newest entry, got:\n%s", data)
	}
}

func TestNewErrorLoggerWithLimits_Defaults(t *testing.T) {
	l := NewErrorLoggerWithLimits("x.log", 0, -1)
	if l.maxSize != MaxLogSizeMB*1024*1024 {
		t.Errorf("maxSize = %d, want %d", l.maxSize, MaxLogSizeMB*1024*1024)
	}
	if l.maxFiles != MaxLogFiles {
		t.Errorf("maxFiles = %d, want %d", l.maxFiles, MaxLogFiles)
	}
}
