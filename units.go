package webcodecs

import (
	"fmt"
	"time"
)

// Timestamp is a point on an engine's media timeline with microsecond
// resolution. Timestamps are always non-negative; arithmetic that would
// produce a negative instant clamps to zero.
type Timestamp uint64

// Timestamp constructors from common units.
func TimestampMicros(us uint64) Timestamp { return Timestamp(us) }
func TimestampMillis(ms uint64) Timestamp { return Timestamp(ms * 1e3) }
func TimestampSeconds(s uint64) Timestamp { return Timestamp(s * 1e6) }

// TimestampUnits converts a value in a custom timebase (e.g. 90kHz RTP
// ticks) to a Timestamp.
func TimestampUnits(value, base uint64) Timestamp {
	return Timestamp(value * 1e6 / base)
}

func (t Timestamp) Micros() uint64  { return uint64(t) }
func (t Timestamp) Millis() uint64  { return uint64(t) / 1e3 }
func (t Timestamp) Seconds() uint64 { return uint64(t) / 1e6 }

// Units converts the timestamp into a custom timebase.
func (t Timestamp) Units(base uint64) uint64 {
	return uint64(t) * base / 1e6
}

// Add offsets the timestamp by d, clamping at zero.
func (t Timestamp) Add(d time.Duration) Timestamp {
	us := int64(t) + int64(d/time.Microsecond)
	if us < 0 {
		return 0
	}
	return Timestamp(us)
}

// Sub returns the signed duration between two timestamps.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(int64(t)-int64(u)) * time.Microsecond
}

func (t Timestamp) Before(u Timestamp) bool { return t < u }
func (t Timestamp) After(u Timestamp) bool  { return t > u }

func (t Timestamp) String() string {
	return (time.Duration(t) * time.Microsecond).String()
}

// Dimensions is a width/height pair in pixels. Wherever a configuration
// requires dimensions, both fields must be non-zero.
type Dimensions struct {
	Width  uint32
	Height uint32
}

// Valid reports whether both dimensions are non-zero.
func (d Dimensions) Valid() bool { return d.Width != 0 && d.Height != 0 }

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
