package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_FileOutputAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "resdb.log")
	if err := Init(Config{Level: "info", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = nil
		mu.Unlock()
	})

	L().Debug("hidden")
	L().Info("shown")
	SetLevel("debug")
	S().Debugw("now visible", "record", "U-a/R-1")
	_ = Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"record":"U-a/R-1"`) {
		t.Fatalf("missing log lines:\n%s", out)
	}
}

func TestL_NopBeforeInit(t *testing.T) {
	mu.Lock()
	prev := globalLogger
	globalLogger = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})

	if L() == nil {
		t.Fatalf("expected a usable logger before Init")
	}
	L().Info("dropped")
}
