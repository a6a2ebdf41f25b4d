// Package trace records what the analyzer is doing: driver steps, the
// analysis of each unit and every semantic pass, as begin/end span events.
//
//	oppc check --trace=- --trace-level=phase prog.json
//
// Tracers: Nop (disabled), StreamTracer (writes immediately), RingTracer
// (keeps the last N events for post-mortem dumps) and MultiTracer (fan-out).
// Levels select how fine-grained the recorded scopes are: phase records the
// driver and passes, detail adds units, debug adds classes.
package trace
