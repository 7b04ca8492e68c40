// Package entropy provides seeds for runs that do not pin one, drawn from
// crypto/rand so separate processes never share a sequence.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"
)

// Seed returns a non-zero random int64. Falls back to the wall clock if the
// system source is unavailable.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		slog.Warn("crypto/rand unavailable, seeding from clock", "error", err)
		return nonZero(time.Now().UnixNano())
	}
	// Drop the sign bit so seeds print as positive numbers.
	return nonZero(int64(binary.LittleEndian.Uint64(buf[:]) >> 1))
}

// Resolve returns seed unchanged unless it is 0, in which case a fresh
// random seed is drawn.
func Resolve(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return Seed()
}

func nonZero(v int64) int64 {
	if v == 0 {
		return 1
	}
	return v
}
