package app

import "time"

// TimerStatus is the lifecycle of an auto-pass timer.
type TimerStatus string

const (
	TimerArmed     TimerStatus = "armed"
	TimerExpired   TimerStatus = "expired"
	TimerCancelled TimerStatus = "cancelled"
)

// AutoPassTimer is armed when a play cannot be beaten. On expiry every other seat is passed for, in rotation
// order, until the trick closes. Generation identifies the arming; a callback for an older generation is a no-op.
type AutoPassTimer struct {
	Generation uint64        `json:"generation"`
	Status     TimerStatus   `json:"status"`
	Exempt     int           `json:"exempt"`
	Match      int           `json:"match"`
	Trick      int           `json:"trick"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`

	handle Timer
}

// Deadline is when the timer fires.
func (a *AutoPassTimer) Deadline() time.Time {
	return a.StartedAt.Add(a.Duration)
}

// Remaining is the time left before the deadline, never negative.
func (a *AutoPassTimer) Remaining(now time.Time) time.Duration {
	if d := a.Deadline().Sub(now); d > 0 {
		return d
	}
	return 0
}

func (a *AutoPassTimer) view(now time.Time) *TimerView {
	v := &TimerView{
		Generation: a.Generation,
		Status:     a.Status,
		Exempt:     a.Exempt,
		StartedAt:  a.StartedAt,
		Deadline:   a.Deadline(),
	}
	if a.Status == TimerArmed {
		v.Remaining = a.Remaining(now).Milliseconds()
	}
	return v
}

// armTimer replaces any pending timer with a fresh one exempting seat. Caller holds t.mu.
func (t *Table) armTimer(seat int) {
	t.cancelTimer()
	if t.autoPass <= 0 {
		return
	}
	t.timerGen++
	timer := &AutoPassTimer{
		Generation: t.timerGen,
		Status:     TimerArmed,
		Exempt:     seat,
		Match:      t.game.Match,
		Trick:      t.game.Turn.Trick,
		StartedAt:  t.clock.Now(),
		Duration:   t.autoPass,
	}
	t.schedule(timer, timer.Duration)
	t.timer = timer
	t.logger.WithFields(map[string]interface{}{
		"generation": timer.Generation,
		"exempt":     seat,
	}).Debug("auto-pass armed for %s", timer.Duration)
}

// schedule starts the clock for timer. Caller holds t.mu.
func (t *Table) schedule(timer *AutoPassTimer, after time.Duration) {
	gen := timer.Generation
	timer.handle = t.clock.AfterFunc(after, func() { t.expire(gen) })
}

// cancelTimer stops a pending timer. Caller holds t.mu.
func (t *Table) cancelTimer() {
	if t.timer == nil || t.timer.Status != TimerArmed {
		return
	}
	if t.timer.handle != nil {
		t.timer.handle.Stop()
	}
	t.timer.Status = TimerCancelled
	t.logger.WithField("generation", t.timer.Generation).Debug("auto-pass cancelled")
}

// expire runs when a timer fires. Each forced pass is its own serialized step so a seat acting between
// two forced passes is observed before the next one.
func (t *Table) expire(gen uint64) {
	for {
		res, step, more := t.forcePass(gen)
		t.afterAccept(step)
		if res.Accepted {
			t.logger.WithField("seat", res.Delta.Seat).Debug("auto-passed seat")
		}
		if !more {
			return
		}
	}
}

// forcePass applies one pass on behalf of the current seat if timer gen is still the live one and its trick
// is still open. more reports whether another forced pass may follow.
func (t *Table) forcePass(gen uint64) (Result, commit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer := t.timer
	if t.closed || t.quarantined || timer == nil || timer.Generation != gen {
		return Result{}, commit{}, false
	}
	if timer.Status == TimerCancelled {
		return Result{}, commit{}, false
	}
	if !t.timerTrickOpen() {
		return Result{}, commit{}, false
	}
	timer.Status = TimerExpired

	seat := t.game.Turn.Current
	if seat == timer.Exempt {
		return Result{}, commit{}, false
	}
	if err := t.game.CheckPass(seat); err != nil {
		t.logger.WithField("seat", seat).Warn("auto-pass refused: %v", err)
		return Result{}, commit{}, false
	}
	out := t.game.ApplyPass(seat)
	res, step := t.accepted(SourceAuto, ActionPass, out)
	return res, step, !out.TrickClosed
}
