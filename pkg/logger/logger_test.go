package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogger_BasicLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "text", Output: &buf})

	log.Debug("dbg", String("k", "v"))
	log.Info("info", Int("n", 42))
	log.Warn("warn", Bool("ok", true))
	log.Error("err", Error(nil))

	out := buf.String()
	// Expect all levels present (debug is the lowest configured)
	for _, s := range []string{"[DEBUG] dbg k=v", "[INFO] info n=42", "[WARN] warn ok=true", "[ERROR] err error=nil"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected output to contain %q, got: %s", s, out)
		}
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Debug("dbg")
	log.Info("info")
	log.Warn("warn")

	out := buf.String()
	if strings.Contains(out, "dbg") || strings.Contains(out, "info") {
		t.Fatalf("expected only warn output, got: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn") {
		t.Fatalf("expected warn message in output, got: %s", out)
	}
}

func TestLogger_NumericFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Info("levels", Float64("alpha", 0.111), Float32("amp", 0.5), Duration("tail", 250*time.Millisecond))

	out := buf.String()
	for _, s := range []string{"alpha=0.111", "amp=0.5", "tail=250ms"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected output to contain %q, got: %s", s, out)
		}
	}
}

func TestLogger_WithComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Output: &buf})
	comp := base.WithComponent("squelch.gate")

	comp.Info("started")

	out := buf.String()
	if !strings.Contains(out, "[squelch.gate]") {
		t.Fatalf("expected component prefix in output, got: %s", out)
	}
	if !strings.Contains(out, "[INFO] started") {
		t.Fatalf("expected info message in output, got: %s", out)
	}
}
