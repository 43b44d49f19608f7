package player

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashgrove-engine/animtree/clip"
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

func straightLineLibrary(t *testing.T) *clip.Library {
	ch := clip.NewChannel(0,
		[]float32{0, 10}, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
		nil, nil,
		nil, nil,
	)
	lib, err := clip.NewLibrary([]clip.Clip{
		{Name: "walk", DurationTicks: 10, TicksPerSecond: 10, Channels: []clip.Channel{ch}},
	})
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib
}

func TestRewindThenAdvanceZeroReproducesStart(t *testing.T) {
	skel := oneBoneSkeleton()
	lib := straightLineLibrary(t)
	p, err := New(skel, lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.SetTime(0, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := p.Play(0); err != nil {
		t.Fatal(err)
	}
	if err := p.Rewind(0); err != nil {
		t.Fatal(err)
	}
	if err := p.AdvanceTime(0); err != nil {
		t.Fatal(err)
	}
	p.ComputeLocalPose()
	got := p.LocalPose()[0]
	want := mgl32.Translate3D(0, 0, 0)
	if got != want {
		t.Errorf("local pose after rewind+advance(0) = %v, want %v", got, want)
	}
}

func TestAdvanceTimeFiresFinishedOnce(t *testing.T) {
	skel := oneBoneSkeleton()
	lib := straightLineLibrary(t)
	p, err := New(skel, lib)
	if err != nil {
		t.Fatal(err)
	}
	var events []EventKind
	p.RegisterEventCallback(func(k EventKind, idx int) { events = append(events, k) })
	if err := p.Play(0); err != nil {
		t.Fatal(err)
	}
	if err := p.AdvanceTime(2); err != nil { // clip is 1 second long
		t.Fatal(err)
	}
	if len(events) != 1 || events[0] != EventFinished {
		t.Fatalf("events = %v, want [FINISHED]", events)
	}
	st, _ := p.State(0)
	if st.Play {
		t.Error("clip should stop playing once finished")
	}
}

func TestAdvanceTimeFiresLoopedWhenLooping(t *testing.T) {
	skel := oneBoneSkeleton()
	lib := straightLineLibrary(t)
	p, err := New(skel, lib)
	if err != nil {
		t.Fatal(err)
	}
	var events []EventKind
	p.RegisterEventCallback(func(k EventKind, idx int) { events = append(events, k) })
	if err := p.Play(0); err != nil {
		t.Fatal(err)
	}
	if err := p.SetLoop(0, true); err != nil {
		t.Fatal(err)
	}
	if err := p.AdvanceTime(1.5); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0] != EventLooped {
		t.Fatalf("events = %v, want [LOOPED]", events)
	}
}

func TestAdvanceTimeAcceptsNegativeDtForReverseScrub(t *testing.T) {
	skel := oneBoneSkeleton()
	lib := straightLineLibrary(t)
	p, err := New(skel, lib)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetTime(0, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := p.Play(0); err != nil {
		t.Fatal(err)
	}
	if err := p.AdvanceTime(-0.2); err != nil {
		t.Fatal(err)
	}
	st, err := p.State(0)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(st.CurrentTime, 0.3, 1e-4) {
		t.Fatalf("CurrentTime = %v, want ~0.3 after scrubbing backward", st.CurrentTime)
	}
}

func TestComputeLocalPoseZeroWeightUsesBindPose(t *testing.T) {
	skel := oneBoneSkeleton()
	skel.Bones[0].LocalBind = mgl32.Translate3D(9, 9, 9)
	lib := straightLineLibrary(t)
	p, err := New(skel, lib)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetWeight(0, 0); err != nil {
		t.Fatal(err)
	}
	p.ComputeLocalPose()
	if p.LocalPose()[0] != skel.Bones[0].LocalBind {
		t.Errorf("expected bind pose fallback when total weight is zero")
	}
}

func TestUnknownClipIndexReturnsError(t *testing.T) {
	skel := oneBoneSkeleton()
	lib := straightLineLibrary(t)
	p, err := New(skel, lib)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Play(5); err != ErrUnknownClip {
		t.Fatalf("got %v, want ErrUnknownClip", err)
	}
}
