package game

import "time"

// scheduleTimer arms the phase deadline. The generation counter plus a
// phase check make a late fire after a forced transition a no-op:
// whichever of "everyone responded" or "time ran out" wins the room
// lock first performs the transition, the loser sees a stale generation
// and returns.
func (r *Room) scheduleTimer(d time.Duration, phase Phase, fn func()) {
	r.stopTimer()
	gen := r.timerGen
	r.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.timerGen != gen || r.phase != phase {
			return
		}
		fn()
	})
}

// stopTimer cancels any armed timer and invalidates fires already in
// flight. Lock held.
func (r *Room) stopTimer() {
	r.timerGen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
