// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-threaded readiness reactor. Resources
// are bound to per-direction callbacks through a Registration; the reactor
// turns poller notifications into callback invocations and drops a
// registration once its callbacks report Done or Failed.
//
// All callbacks run on the goroutine that drives Run, RunOnce or
// RunUntilIdle. Next, Stop and Wake are the only methods safe to call from
// other goroutines.
package reactor
