package trace

import (
	"context"
	"runtime"
	"strconv"
	"time"
)

// Heartbeat emits a driver-scope event on every tick. A run whose unit spans
// stop ending while beats keep coming is stuck, not slow. Each beat carries
// the goroutine count and live heap so a runaway pass shows up as growth.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) run(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tracer.Emit(beatEvent(now, beat))
		}
	}
}

func beatEvent(now time.Time, beat int) *Event {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return &Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: "#" + strconv.Itoa(beat),
		Extra: map[string]string{
			"goroutines": strconv.Itoa(runtime.NumGoroutine()),
			"heap_kb":    strconv.FormatUint(mem.HeapAlloc/1024, 10),
		},
	}
}

// Stop is idempotent and safe on nil.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
