package main

import (
	"testing"

	"opp/internal/trace"
)

func TestTraceConfig(t *testing.T) {
	cfg, err := traceConfig(newFlags(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != trace.LevelOff || cfg.Mode != trace.ModeRing || cfg.Format != trace.FormatAuto {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	cfg, err = traceConfig(newFlags(t, "--trace=run.ndjson", "--trace-mode=both", "--trace-heartbeat=2s"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != trace.LevelPhase {
		t.Fatalf("--trace alone should enable phase, got %v", cfg.Level)
	}
	if cfg.Mode != trace.ModeBoth || cfg.Path != "run.ndjson" || cfg.Heartbeat.Seconds() != 2 {
		t.Fatalf("flags not applied: %+v", cfg)
	}

	for _, args := range [][]string{{"--trace-level=loud"}, {"--trace-mode=disk"}, {"--trace-format=xml"}} {
		if _, err := traceConfig(newFlags(t, args...)); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
