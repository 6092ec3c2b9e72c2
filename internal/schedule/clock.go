package schedule

import "time"

// Clock supplies the current instant. Services take a Clock instead of
// calling time.Now so sweeps can be tested at a fixed point in time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation used in production.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
