package tree

import (
	"testing"

	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/skeleton"
)

func TestBlend2MaskExcludesBone(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("main", 1), straightLineClip("blend", 1))
	tr, err := New(p, 8)
	if err != nil {
		t.Fatal(err)
	}
	main, _ := CreateAnimation(tr, AnimationParams{ClipIndex: 0, Play: true})
	blend, _ := CreateAnimation(tr, AnimationParams{ClipIndex: 1, Play: true})

	var mask skeleton.BoneMask // zero value: no bones selected
	b2, err := CreateBlend2(tr, Blend2Params{Weight: 1, Mask: &mask})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(b2, main, 0); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(b2, blend, 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoot(b2); err != nil {
		t.Fatal(err)
	}

	info := UpdateInfo{}
	if err := tr.updateNode(b2, 0.5, &info); err != nil {
		t.Fatal(err)
	}

	var wantOut, gotOut clip.Transform
	if err := tr.evalNode(main, 0, &wantOut, nil); err != nil {
		t.Fatal(err)
	}
	if err := tr.evalNode(b2, 0, &gotOut, nil); err != nil {
		t.Fatal(err)
	}

	// With bone 0 masked out, the blend must pass main through unchanged
	// even though weight=1 would otherwise fully select blend's pose.
	if gotOut != wantOut {
		t.Errorf("masked Blend2 output = %+v, want main's unmodified output %+v", gotOut, wantOut)
	}
}

func TestAdd2LayersOnTopOfMain(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("main", 1), straightLineClip("add", 1))
	tr, err := New(p, 8)
	if err != nil {
		t.Fatal(err)
	}
	main, _ := CreateAnimation(tr, AnimationParams{ClipIndex: 0, Play: true})
	add, _ := CreateAnimation(tr, AnimationParams{ClipIndex: 1, Play: true})

	a2, err := CreateAdd2(tr, Add2Params{Weight: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(a2, main, 0); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(a2, add, 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoot(a2); err != nil {
		t.Fatal(err)
	}

	if err := tr.Update(1); err != nil {
		t.Fatal(err)
	}
	// Both clips reach full translation (1,0,0) at t=1; an additive layer
	// at full weight should roughly double the translation on bone 0.
	x := p.LocalPose()[0][12]
	if !approxEqual(x, 2, 1e-2) {
		t.Errorf("additive layered translation.X = %v, want ~2", x)
	}
}
