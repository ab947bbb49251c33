package engine

import "time"

// Clock supplies the current time to the monitor.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
