// Package utils contains small byte and timing helpers shared by the driver
// packages.
package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Int16FromBytesLE composes the signed 16-bit value stored little-endian in
// the first two bytes of b.
func Int16FromBytesLE(b []byte) int16 {
	return int16(uint16(b[0]) | uint16(b[1])<<8)
}

// BytesFromInt16LE splits v into its two little-endian bytes.
func BytesFromInt16LE(v int16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

// SelectContextOrWait waits on clk for at least dur unless the context is
// done first, in which case it returns false. The clock is a parameter so
// polling loops built on this stay deterministic under a mock clock.
func SelectContextOrWait(ctx context.Context, clk clock.Clock, dur time.Duration) bool {
	timer := clk.Timer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
