package tree

import "testing"

func TestSwitchWeightRampsGraduallyNotSnaps(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 5), straightLineClip("b", 5))
	tr, err := New(p, 8)
	if err != nil {
		t.Fatal(err)
	}
	a, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0, Play: true})
	if err != nil {
		t.Fatal(err)
	}
	b, err := CreateAnimation(tr, AnimationParams{ClipIndex: 1, Play: true})
	if err != nil {
		t.Fatal(err)
	}
	sw, err := CreateSwitch(tr, SwitchParams{InputCount: 2, Active: 0, XFadeTime: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(sw, a, 0); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(sw, b, 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoot(sw); err != nil {
		t.Fatal(err)
	}

	if err := SetSwitchActive(tr, sw, 1); err != nil {
		t.Fatal(err)
	}

	n, err := tr.switchNode(sw)
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.updateSwitch(n, 0.5, &UpdateInfo{}); err != nil {
		t.Fatal(err)
	}
	if !approxEqual(n.weights[0], 0.5, 1e-5) || !approxEqual(n.weights[1], 0.5, 1e-5) {
		t.Fatalf("after 0.5s of a 1s fade, weights = %v, want [0.5 0.5]", n.weights)
	}

	if err := tr.updateSwitch(n, 0.5, &UpdateInfo{}); err != nil {
		t.Fatal(err)
	}
	if !approxEqual(n.weights[0], 0, 1e-5) || !approxEqual(n.weights[1], 1, 1e-5) {
		t.Fatalf("after the full 1s fade, weights = %v, want [0 1]", n.weights)
	}
}

func TestSwitchZeroXFadeSnapsInstantly(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 5), straightLineClip("b", 5))
	tr, err := New(p, 8)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := CreateAnimation(tr, AnimationParams{ClipIndex: 0, Play: true})
	b, _ := CreateAnimation(tr, AnimationParams{ClipIndex: 1, Play: true})
	sw, err := CreateSwitch(tr, SwitchParams{InputCount: 2, Active: 0, XFadeTime: 0})
	if err != nil {
		t.Fatal(err)
	}
	_ = tr.AddInput(sw, a, 0)
	_ = tr.AddInput(sw, b, 1)

	if err := SetSwitchActive(tr, sw, 1); err != nil {
		t.Fatal(err)
	}
	n, err := tr.switchNode(sw)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.updateSwitch(n, 0.001, &UpdateInfo{}); err != nil {
		t.Fatal(err)
	}
	if n.weights[0] != 0 || n.weights[1] != 1 {
		t.Fatalf("zero xFadeTime should snap weights immediately, got %v", n.weights)
	}
}
