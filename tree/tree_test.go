package tree

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/player"
	"github.com/ashgrove-engine/animtree/skeleton"
)

func approxEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func oneBoneSkeleton() *skeleton.Skeleton {
	return skeleton.New([]skeleton.Bone{
		{Name: "root", Parent: -1, LocalBind: mgl32.Ident4(), ModelBind: mgl32.Ident4(), InverseBind: mgl32.Ident4()},
	}, mgl32.Ident4())
}

// straightLineClip builds a clip whose bone 0 translates from zero to
// (1,0,0) over durationSeconds, at one tick per second.
func straightLineClip(name string, durationSeconds float32) clip.Clip {
	ch := clip.NewChannel(0,
		[]float32{0, durationSeconds}, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
		nil, nil,
		nil, nil,
	)
	return clip.Clip{Name: name, DurationTicks: durationSeconds, TicksPerSecond: 1, Channels: []clip.Channel{ch}}
}

func newTestPlayer(t *testing.T, clips ...clip.Clip) *player.Player {
	t.Helper()
	lib, err := clip.NewLibrary(clips)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	p, err := player.New(oneBoneSkeleton(), lib)
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	return p
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 1))
	if _, err := New(p, 0); err == nil {
		t.Fatal("expected error for maxNodes=0")
	}
}

func TestArenaCapacityExceeded(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 1))
	tr, err := New(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0}); err != nil {
		t.Fatalf("first CreateAnimation: %v", err)
	}
	if _, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0}); err != ErrCapacityExceeded {
		t.Fatalf("second CreateAnimation: got %v, want ErrCapacityExceeded", err)
	}
}

func TestAddInputRejectsOutOfRangeBlend2Index(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 1))
	tr, err := New(p, 4)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := CreateBlend2(tr, Blend2Params{})
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(b2, leaf, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestAddInputRejectsAnimationParent(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 1))
	tr, err := New(p, 4)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	other, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddInput(leaf, other, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateRejectsNegativeDt(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 1))
	tr, err := New(p, 4)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0, Play: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoot(leaf); err != nil {
		t.Fatal(err)
	}
	if err := tr.Update(-1); err == nil {
		t.Fatal("expected error for negative dt")
	}
}

func TestUpdateWithNoRootFails(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("a", 1))
	tr, err := New(p, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Update(0.1); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestRootMotionSingleLoop(t *testing.T) {
	p := newTestPlayer(t, straightLineClip("run", 1))
	tr, err := New(p, 4, WithRootBone(0))
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := CreateAnimation(tr, AnimationParams{ClipIndex: 0, Speed: 1, Loop: true, Play: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.AddRoot(leaf); err != nil {
		t.Fatal(err)
	}
	motion, distance, err := tr.UpdateWithRootMotion(2.5)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(motion.Translation.X(), 2.5, 1e-3) {
		t.Errorf("motion.X = %v, want ~2.5", motion.Translation.X())
	}
	if !approxEqual(distance.Translation.X(), 0.5, 1e-3) {
		t.Errorf("distance.X = %v, want ~0.5", distance.Translation.X())
	}
}
