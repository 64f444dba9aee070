// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package future provides the single-producer/single-consumer completion
// primitives used by the pipe engine: Future for exactly one result and
// Stream for an ordered sequence of values ended by a close or a failure.
//
// Dropping a consumer never cancels the producer; the producing side keeps
// running until it reaches its own terminal state and the result is
// discarded.
package future
