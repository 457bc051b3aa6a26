package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "scenery3d.log")

	// 1MB is the smallest size lumberjack accepts
	err := InitWithOptions(Options{
		Level: "debug",
		File:  FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1},
	})
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	face := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("cube face %d refreshed: %s", i, face)
	}
	Sync()

	if _, err := os.Stat(logFile); err != nil {
		t.Fatalf("main log file missing: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	rotated := 0
	for _, e := range entries {
		name := e.Name()
		if name == "scenery3d.log" || !strings.HasPrefix(name, "scenery3d") {
			continue
		}
		rotated++
		// lumberjack names backups scenery3d-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s has no timestamp", name)
		}
	}
	if rotated == 0 {
		t.Error("no rotated files found")
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
		{"bogus", []string{"INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := InitWithOptions(Options{Level: tt.level, Console: &buf}); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "info", Console: &buf}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	log := Named("renderer")

	log.Debug("hidden")
	SetLevel("debug")
	if Level() != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %v", Level())
	}
	log.Debug("shown")
	SetLevel("info")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("debug message missing after SetLevel")
	}
}

func TestConsoleAndFileTogether(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")
	err := InitWithOptions(Options{Level: "info", Console: &buf, File: FileConfig{Path: logFile, MaxSizeMB: 1}})
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("shadow maps ready")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "shadow maps ready") {
		t.Error("message missing from file")
	}
	if !strings.Contains(buf.String(), "shadow maps ready") {
		t.Error("message missing from console")
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("uncolored console output contains escape codes")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")

	if cfg.Path != "/tmp/test.log" {
		t.Errorf("expected path /tmp/test.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 {
		t.Errorf("unexpected rotation limits %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}

func TestNamedBeforeInit(t *testing.T) {
	saved, savedSugar := Log, Sugar
	Log, Sugar = nil, nil
	defer func() { Log, Sugar = saved, savedSugar }()

	// must not panic without a configured logger
	Named("renderer").Info("dropped")
	Warn("dropped too")
}

func TestNamedComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "WARNING", Console: &buf}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Named("cubemap").Warn("falling back to textures")
	Named("cubemap").Info("filtered out")
	Sync()

	out := buf.String()
	if !strings.Contains(out, "cubemap") || !strings.Contains(out, "falling back to textures") {
		t.Errorf("expected named warning in output, got %q", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Error("info message logged at warning level")
	}
}
