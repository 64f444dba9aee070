// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing: an in-process Poller with scripted
// readiness and scripted raw endpoints with predictable would-block, data,
// EOF and failure sequences.
package fake
