package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives events from spans and points. Emit must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode selects where events go: written as they happen, kept in
// memory until the run ends, or both.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(s string) (StorageMode, error) {
	for m, name := range modeNames {
		if name != "" && strings.EqualFold(s, name) {
			return StorageMode(m), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes one tracing session of oppc.
type Config struct {
	Level Level
	Mode  StorageMode
	// Path is "" or "-" for stderr. Ring-only sessions write the buffer
	// there on Close.
	Path      string
	Format    Format // FormatAuto picks by Path
	RingSize  int
	Heartbeat time.Duration // 0 = off
}

// Session owns a tracer together with its ring buffer and heartbeat.
type Session struct {
	Tracer
	// Ring is nil in stream mode.
	Ring *RingTracer

	cfg       Config
	heartbeat *Heartbeat
}

// Open starts a session. A LevelOff config yields a session around Nop.
func Open(cfg Config) (*Session, error) {
	s := &Session{Tracer: Nop, cfg: cfg}
	if cfg.Level == LevelOff {
		return s, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = 4096
	}
	if cfg.Format == FormatAuto {
		cfg.Format = FormatForPath(cfg.Path)
	}
	s.cfg = cfg
	if cfg.Mode != ModeStream {
		s.Ring = NewRingTracer(cfg.RingSize, cfg.Level)
	}

	switch cfg.Mode {
	case ModeRing:
		s.Tracer = s.Ring
	case ModeStream, ModeBoth:
		w, err := openOutput(cfg.Path)
		if err != nil {
			return nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, cfg.Format)
		if cfg.Mode == ModeStream {
			s.Tracer = stream
		} else {
			s.Tracer = NewMultiTracer(cfg.Level, stream, s.Ring)
		}
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
	s.heartbeat = StartHeartbeat(s.Tracer, cfg.Heartbeat)
	return s, nil
}

// Close stops the heartbeat, writes a ring-only buffer to Path and
// releases the output.
func (s *Session) Close() error {
	s.heartbeat.Stop()
	var errs []error
	if s.cfg.Mode == ModeRing && s.Ring != nil {
		if err := s.dumpRing(); err != nil {
			errs = append(errs, fmt.Errorf("dump: %w", err))
		}
	}
	if err := s.Tracer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush: %w", err))
	}
	if err := s.Tracer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Session) dumpRing() error {
	w, err := openOutput(s.cfg.Path)
	if err != nil {
		return err
	}
	if err := s.Ring.Dump(w, s.cfg.Format); err != nil {
		_ = closeOutput(w)
		return err
	}
	return closeOutput(w)
}

func openOutput(path string) (io.Writer, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

func closeOutput(w io.Writer) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
