package policies

import "time"

// Clock abstracts "now" so every decision the engine makes against the
// operating calendar is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock UTC time.
func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}
