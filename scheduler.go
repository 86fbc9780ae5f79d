package skyline

import "time"

// FrameScheduler schedules a single callback for the next display
// refresh. The renderer reschedules itself after every frame; it never
// holds more than one pending callback.
//
// Schedule must not invoke fn synchronously. The returned cancel
// function prevents a pending fn from firing; canceling an already
// fired callback is a no-op.
type FrameScheduler interface {
	Schedule(fn func()) (cancel func())
}

// refreshInterval approximates a 60 Hz display signal.
const refreshInterval = time.Second / 60

// tickScheduler schedules callbacks on a timer at display refresh rate.
// This is the default scheduler; hosts with a real vsync signal should
// supply their own via WithScheduler.
type tickScheduler struct {
	interval time.Duration
}

// NewTickScheduler returns a timer-based scheduler firing roughly every
// interval. A non-positive interval uses the 60 Hz default.
func NewTickScheduler(interval time.Duration) FrameScheduler {
	if interval <= 0 {
		interval = refreshInterval
	}
	return &tickScheduler{interval: interval}
}

func (s *tickScheduler) Schedule(fn func()) (cancel func()) {
	t := time.AfterFunc(s.interval, fn)
	return func() { t.Stop() }
}
