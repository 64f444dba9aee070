// Package pool
// Author: momentics <momentics@gmail.com>
//
// Byte storage for transfers: the fixed-capacity Ring that provides
// backpressure between the two sides of a pipe, and BytePool which recycles
// ring storage between transfers.
package pool
