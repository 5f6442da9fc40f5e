package game

import "time"

type timerScheduler struct{}

// NewScheduler returns the production Scheduler, backed by
// time.AfterFunc. Cancel is Timer.Stop: it reports false once the
// callback has been handed to the runtime, which is why scoring
// idempotence lives in the lobby and not here.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, fn func()) (cancel func() bool) {
	return time.AfterFunc(d, fn).Stop
}
