// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for the single-threaded reactor: a single-owner
// cell for state shared between the callbacks of one transfer, and the
// cross-goroutine task queue drained by the event loop.
package concurrency
