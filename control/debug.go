// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probe functions for runtime inspection.

package control

import (
	"slices"
	"sync"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts or replaces a named probe.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// UnregisterProbe removes a probe.
func (dp *DebugProbes) UnregisterProbe(name string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	delete(dp.probes, name)
}

// Names returns the sorted probe names.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// DumpState returns the output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// LoopStats is the view of an event loop exposed through probes.
type LoopStats interface {
	Len() int
	Pending() int
}

// RegisterLoopProbes exposes registration and task counts of loop.
// Probe functions run on the caller's goroutine, so loop must tolerate
// racy reads of its counters.
func RegisterLoopProbes(dp *DebugProbes, loop LoopStats) {
	dp.RegisterProbe("reactor.registrations", func() any { return loop.Len() })
	dp.RegisterProbe("reactor.pending", func() any { return loop.Pending() })
}
