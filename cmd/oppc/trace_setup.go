package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"opp/internal/trace"
)

var (
	traceCleanup func()
	// activeRing keeps the in-memory trace for dumpTraceOnPanic.
	activeRing *trace.RingTracer
)

func runTraceCleanup() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

// traceConfig reads the --trace* flags. --trace without a level means phase.
func traceConfig(pf *pflag.FlagSet) (trace.Config, error) {
	var (
		cfg  trace.Config
		errs []error
	)
	str := func(name string) string {
		v, err := pf.GetString(name)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	cfg.Path = str("trace")
	level, mode, format := str("trace-level"), str("trace-mode"), str("trace-format")
	var err error
	if cfg.RingSize, err = pf.GetInt("trace-ring-size"); err != nil {
		errs = append(errs, err)
	}
	if cfg.Heartbeat, err = pf.GetDuration("trace-heartbeat"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("failed to read trace flags: %w", errs[0])
	}

	if cfg.Level, err = trace.ParseLevel(level); err != nil {
		return cfg, fmt.Errorf("invalid trace level: %w", err)
	}
	if cfg.Level == trace.LevelOff && cfg.Path != "" {
		cfg.Level = trace.LevelPhase
	}
	if cfg.Mode, err = trace.ParseMode(mode); err != nil {
		return cfg, fmt.Errorf("invalid trace mode: %w", err)
	}
	if cfg.Format, err = trace.ParseFormat(format); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupTracing opens the trace session and stores it in the command context.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	cfg, err := traceConfig(root.PersistentFlags())
	if err != nil {
		return nil, err
	}
	session, err := trace.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	activeRing = session.Ring

	ctx := trace.WithTracer(cmd.Context(), session.Tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	return func() {
		if err := session.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
		activeRing = nil
	}, nil
}

// dumpTraceOnPanic writes the ring buffer to stderr and re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if activeRing != nil {
		fmt.Fprintln(os.Stderr, "--- trace before panic ---")
		_ = activeRing.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
