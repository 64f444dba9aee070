// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime control layer for hioload-aio: live configuration store with
// reload listeners, debug probes, structured logging helpers, and the
// OpenTelemetry metrics and tracing used by the reactor and the pipe engine.
//
// Metrics and tracing have no-op implementations for when they are disabled.
package control
