package clip

import "testing"

func TestAdvanceNoWrap(t *testing.T) {
	newT, raw, fin := Advance(0.2, 0.1, 1, 1.0, true)
	if !approxEqual(newT, 0.3, 1e-5) || raw != 0 || fin {
		t.Fatalf("got (%v,%v,%v), want (0.3,0,false)", newT, raw, fin)
	}
}

func TestAdvanceClampsWhenNotLooping(t *testing.T) {
	newT, raw, fin := Advance(0.95, 0.5, 1, 1.0, false)
	if newT != 1.0 || raw != 0 || !fin {
		t.Fatalf("got (%v,%v,%v), want (1,0,true)", newT, raw, fin)
	}
}

func TestAdvanceWrapsForward(t *testing.T) {
	newT, raw, fin := Advance(0, 2.5, 1, 1.0, true)
	if !approxEqual(newT, 0.5, 1e-5) || raw != 2 || fin {
		t.Fatalf("got (%v,%v,%v), want (0.5,2,false)", newT, raw, fin)
	}
}

func TestAdvanceWrapsBackward(t *testing.T) {
	newT, raw, fin := Advance(0.3, 2.5, -1, 1.0, true)
	if !approxEqual(newT, 0.8, 1e-5) || raw != 3 || fin {
		t.Fatalf("got (%v,%v,%v), want (0.8,3,false)", newT, raw, fin)
	}
}

func TestAdvanceNegativeDtScrubsBackward(t *testing.T) {
	newT, raw, fin := Advance(0.1, -0.5, 1, 1.0, true)
	if !approxEqual(newT, 0.6, 1e-5) || raw != 1 || fin {
		t.Fatalf("got (%v,%v,%v), want (0.6,1,false)", newT, raw, fin)
	}
}

func TestAdvanceNegativeDtWithNegativeSpeedScrubsForward(t *testing.T) {
	// speed and dt both negative: direction of motion is speed*dt > 0.
	newT, raw, fin := Advance(0.8, -0.5, -1, 1.0, true)
	if !approxEqual(newT, 0.3, 1e-5) || raw != 1 || fin {
		t.Fatalf("got (%v,%v,%v), want (0.3,1,false)", newT, raw, fin)
	}
}

func TestRootMotionLoopsSentinel(t *testing.T) {
	if got := RootMotionLoops(0); got != -1 {
		t.Errorf("RootMotionLoops(0) = %v, want -1", got)
	}
	if got := RootMotionLoops(1); got != 0 {
		t.Errorf("RootMotionLoops(1) = %v, want 0", got)
	}
	if got := RootMotionLoops(2); got != 1 {
		t.Errorf("RootMotionLoops(2) = %v, want 1", got)
	}
}
