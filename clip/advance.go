package clip

// Advance moves current forward (or backward, when speed*dt < 0) by speed*dt
// seconds against a clip of length durationSeconds, handling the loop-wrap
// or end-clamp behavior shared by the player's per-clip playback and the
// tree's Animation leaf nodes.
//
// Parameters:
//   - current: the time before this step, in seconds
//   - dt: the elapsed time for this step; may be negative for reverse scrub
//   - speed: playback speed/direction multiplier
//   - durationSeconds: the clip's duration; a value <= 0 is treated as a
//     degenerate clip that never advances
//   - loop: whether to wrap on reaching either boundary
//
// Returns:
//   - newTime: the resulting time, always within [0, durationSeconds]
//   - rawLoops: the number of whole-duration boundary crossings this step
//     made; 0 if the step stayed within the clip (including a clamp-to-end
//     with loop == false)
//   - finished: true if loop == false and this step reached a boundary
func Advance(current, dt, speed, durationSeconds float32, loop bool) (newTime float32, rawLoops int, finished bool) {
	if durationSeconds <= 0 {
		return current, 0, false
	}
	delta := speed * dt
	t := current + delta
	switch {
	case delta >= 0 && t >= durationSeconds:
		if !loop {
			return durationSeconds, 0, true
		}
		n := int(t / durationSeconds)
		t -= float32(n) * durationSeconds
		if t < 0 {
			t = 0
		}
		return t, n, false
	case delta < 0 && t <= 0:
		if !loop {
			return 0, 0, true
		}
		n := int(-t/durationSeconds) + 1
		t += float32(n) * durationSeconds
		return t, n, false
	default:
		return t, 0, false
	}
}

// RootMotionLoops converts the raw boundary-crossing count Advance reports
// into the signed "loops" value §4.4's root-motion formula expects: -1 when
// no boundary was crossed this step, or the number of *additional* full
// laps between the step's starting and ending partial segments otherwise
// (one less than the raw crossing count).
func RootMotionLoops(rawLoops int) int {
	if rawLoops <= 0 {
		return -1
	}
	return rawLoops - 1
}
