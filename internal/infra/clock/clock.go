// Package clock abstracts time for the mission controller. Every scheduled
// transition is armed through a Clock so tests can substitute a deterministic
// fake and drive timers by hand.
package clock

import "time"

// Timer is a cancellation token for a scheduled callback.
// Stop reports whether the callback was prevented from firing.
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// ─── System Clock ───────────────────────────────────────────────────────────

type systemClock struct{}

type systemTimer struct{ t *time.Timer }

func (s systemTimer) Stop() bool { return s.t.Stop() }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{t: time.AfterFunc(d, fn)}
}

// System returns the wall-clock implementation.
func System() Clock { return systemClock{} }
