package clock

import "time"

// Clock abstracts wall-clock access so the scheduler can be driven by a
// fake clock in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
