package reactor

import "time"

// TimerHandler is invoked when a Timer fires. fired is true for a normal
// expiry and false for the single synthetic callback Timer.Cancel makes
// after clearing the handler, matching original_source's
// Timer::cancel()/eventHandler(false) ordering: the handler is cleared
// before this final call, so re-entrant Set calls from within it observe
// no pending timer.
type TimerHandler func(fired bool)

// Timer is a monotonic, reactor-driven interval or one-shot timer (spec.md
// §4.4). Set/Cancel/Close are reactor-goroutine-only.
type Timer struct {
	rx *Reactor
	id SourceID

	handler  TimerHandler
	period   time.Duration
	repeated bool

	// wt backs the Windows implementation's time.AfterFunc-driven arming;
	// unused on platforms with a native kernel timer.
	wt *time.Timer
}

// ID returns the opaque SourceID this Timer is registered under.
func (t *Timer) ID() SourceID { return t.id }
