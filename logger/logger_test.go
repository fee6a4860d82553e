package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	dir := t.TempDir()
	log := New(Options{Dir: dir, Filename: "build.log"})
	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "build.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file should not be empty")
	}
}

func TestNewDebugEnablesDebugLevel(t *testing.T) {
	log := New(Options{Mode: "DEBUG"})
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled in debug mode")
	}
	log = New(Options{})
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be disabled by default")
	}
}

func TestPositiveOr(t *testing.T) {
	if got := positiveOr(0, 7); got != 7 {
		t.Errorf("positiveOr(0, 7) = %d, want 7", got)
	}
	if got := positiveOr(3, 7); got != 3 {
		t.Errorf("positiveOr(3, 7) = %d, want 3", got)
	}
}
