// Package player drives playback of a clip.Library against a skeleton.Skeleton:
// per-clip play state, time advance with loop/finish events, and the CPU
// pose pipeline (local -> model -> skin matrices) that an external renderer
// consumes.
package player

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/common"
	"github.com/ashgrove-engine/animtree/skeleton"
)

var logger = log.Default()

// SetLogger overrides the package-level logger used for rejected-call
// warnings. Passing nil restores the default logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.Default()
		return
	}
	logger = l
}

// ErrUnknownClip is returned when a PlayState operation names a clip index
// outside the library's range.
var ErrUnknownClip = errors.New("player: unknown clip index")

// EventKind distinguishes the two playback events a Player can deliver.
type EventKind uint8

const (
	// EventLooped is delivered when a clip wraps around during AdvanceTime.
	EventLooped EventKind = iota
	// EventFinished is delivered when a non-looping clip reaches its end.
	EventFinished
)

func (k EventKind) String() string {
	if k == EventFinished {
		return "FINISHED"
	}
	return "LOOPED"
}

// EventCallback receives playback events, tagged with the clip index that
// produced them.
type EventCallback func(kind EventKind, clipIndex int)

// PlayState is the per-clip runtime playback state a Player owns one of for
// every clip in its library.
type PlayState struct {
	CurrentTime float32 // seconds
	Weight      float32 // >= 0; blend contribution, not clamped to 1
	Speed       float32
	Loop        bool
	Play        bool
}

func defaultPlayState() PlayState {
	return PlayState{
		Speed:  common.Coalesce(float32(0), 1),
		Weight: common.Coalesce(float32(0), 1),
	}
}

// Player is the playback driver of §4.2: it owns per-clip PlayState and the
// three CPU pose buffers (local, model, skin) sized to the skeleton's bone
// count.
type Player struct {
	skel *skeleton.Skeleton
	lib  *clip.Library

	states []PlayState

	localPose []mgl32.Mat4
	modelPose []mgl32.Mat4
	skin      []mgl32.Mat4

	onEvent EventCallback
}

// Option configures a Player during construction.
type Option func(*Player)

// WithEventCallback is an option builder that registers the LOOPED/FINISHED
// event callback at construction time.
//
// Parameters:
//   - cb: the callback to invoke from AdvanceTime
//
// Returns:
//   - Option: a function that applies the callback option to a Player
func WithEventCallback(cb EventCallback) Option {
	return func(p *Player) {
		p.onEvent = cb
	}
}

// New builds a Player bound to skel and lib. The three pose buffers are
// allocated immediately, sized to skel.BoneCount(); every PlayState starts
// stopped, at time zero, speed 1, weight 1, non-looping.
//
// Parameters:
//   - skel: the skeleton to pose; outlives the Player
//   - lib: the clip library to play from; outlives the Player
//   - opts: construction-time options
//
// Returns:
//   - *Player: the constructed player
//   - error: non-nil if skel fails skeleton.Skeleton.Validate
func New(skel *skeleton.Skeleton, lib *clip.Library, opts ...Option) (*Player, error) {
	if err := skel.Validate(); err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	n := skel.BoneCount()
	p := &Player{
		skel:      skel,
		lib:       lib,
		states:    make([]PlayState, lib.Len()),
		localPose: make([]mgl32.Mat4, n),
		modelPose: make([]mgl32.Mat4, n),
		skin:      make([]mgl32.Mat4, n),
	}
	for i := range p.states {
		p.states[i] = defaultPlayState()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// RegisterEventCallback sets (or clears, with nil) the LOOPED/FINISHED
// callback after construction.
func (p *Player) RegisterEventCallback(cb EventCallback) {
	p.onEvent = cb
}

func (p *Player) state(clipIndex int) (*PlayState, error) {
	if clipIndex < 0 || clipIndex >= len(p.states) {
		logger.Printf("player: rejected: unknown clip index %d", clipIndex)
		return nil, ErrUnknownClip
	}
	return &p.states[clipIndex], nil
}

// Play marks a clip playing without resetting its current time.
func (p *Player) Play(clipIndex int) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.Play = true
	return nil
}

// Pause marks a clip not playing, leaving its current time untouched.
func (p *Player) Pause(clipIndex int) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.Play = false
	return nil
}

// Stop pauses a clip and rewinds it to time zero.
func (p *Player) Stop(clipIndex int) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.Play = false
	s.CurrentTime = 0
	return nil
}

// Rewind resets a clip's current time to zero without changing its play flag.
func (p *Player) Rewind(clipIndex int) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.CurrentTime = 0
	return nil
}

// SetTime sets a clip's current time directly, in seconds.
func (p *Player) SetTime(clipIndex int, t float32) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.CurrentTime = t
	return nil
}

// SetWeight sets a clip's blend weight.
func (p *Player) SetWeight(clipIndex int, w float32) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.Weight = w
	return nil
}

// SetSpeed sets a clip's playback speed; negative values play in reverse.
func (p *Player) SetSpeed(clipIndex int, speed float32) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.Speed = speed
	return nil
}

// SetLoop sets a clip's loop flag.
func (p *Player) SetLoop(clipIndex int, loop bool) error {
	s, err := p.state(clipIndex)
	if err != nil {
		return err
	}
	s.Loop = loop
	return nil
}

// State returns a copy of clipIndex's current PlayState.
func (p *Player) State(clipIndex int) (PlayState, error) {
	s, err := p.state(clipIndex)
	if err != nil {
		return PlayState{}, err
	}
	return *s, nil
}

// AdvanceTime advances every playing clip's current time by speed*dt,
// wrapping looping clips and clamping-then-firing EventFinished on
// non-looping clips that reach an end. dt may be negative for reverse
// scrub-style tests; direction of motion is speed*dt, not dt alone, so a
// negative dt against a negative Speed still plays forward.
func (p *Player) AdvanceTime(dt float32) error {
	for i := range p.states {
		s := &p.states[i]
		if !s.Play {
			continue
		}
		c := p.lib.Index(i)
		if c == nil {
			continue
		}
		newTime, rawLoops, finished := clip.Advance(s.CurrentTime, dt, s.Speed, c.DurationSeconds(), s.Loop)
		s.CurrentTime = newTime
		if rawLoops > 0 && p.onEvent != nil {
			p.onEvent(EventLooped, i)
		}
		if finished {
			s.Play = false
			if p.onEvent != nil {
				p.onEvent(EventFinished, i)
			}
		}
	}
	return nil
}

// ComputeLocalPose blends every playing-or-not clip with Weight > 0 into
// localPose, per bone, using weight-normalized addition, falling back to
// skel.LocalBind for any bone that no contributing clip animates. If every
// clip's total weight is <= 0, localPose is copied wholesale from the bind
// pose.
func (p *Player) ComputeLocalPose() {
	n := p.skel.BoneCount()
	totalWeight := float32(0)
	for i := range p.states {
		if p.states[i].Weight > 0 {
			totalWeight += p.states[i].Weight
		}
	}
	if totalWeight <= 0 {
		for i, b := range p.skel.Bones {
			p.localPose[i] = b.LocalBind
		}
		return
	}
	invTotal := 1 / totalWeight
	for bone := 0; bone < n; bone++ {
		acc := clip.ZeroTransform()
		any := false
		for i := range p.states {
			s := &p.states[i]
			if s.Weight <= 0 {
				continue
			}
			c := p.lib.Index(i)
			if c == nil {
				continue
			}
			ch := c.Channel(bone)
			if ch == nil {
				continue
			}
			tr := clip.Sample(ch, s.CurrentTime*c.TicksPerSecond)
			acc = acc.Add(tr.Scaled(s.Weight * invTotal))
			any = true
		}
		if !any {
			p.localPose[bone] = p.skel.Bones[bone].LocalBind
			continue
		}
		p.localPose[bone] = acc.Normalized().Mat4()
	}
}

// ComputeModelPose composes the model-space pose from the last
// ComputeLocalPose result.
func (p *Player) ComputeModelPose() {
	p.skel.ComputeModelPose(p.localPose, p.modelPose)
}

// UploadSkin computes the final skin matrices and returns them as a flat
// byte slice (16 little-endian float32s per bone, column-major) ready to
// hand to an external skinning buffer. The returned slice is a view of the
// player's own skin buffer, not a copy: the next UploadSkin call overwrites
// its contents.
func (p *Player) UploadSkin() []byte {
	p.skel.ComputeSkin(p.modelPose, p.skin)
	return common.SliceToBytes(p.skin)
}

// LocalPose returns the most recently computed local pose.
func (p *Player) LocalPose() []mgl32.Mat4 { return p.localPose }

// ModelPose returns the most recently computed model pose.
func (p *Player) ModelPose() []mgl32.Mat4 { return p.modelPose }

// Skeleton returns the skeleton this player was built against.
func (p *Player) Skeleton() *skeleton.Skeleton { return p.skel }

// Library returns the clip library this player was built against.
func (p *Player) Library() *clip.Library { return p.lib }

// ResetToBindPose overwrites local and model pose with the skeleton's bind
// pose. The skin matrices are not touched; the next UploadSkin derives them
// from the bind model pose. Used by the tree's top-level update to recover
// from a StructuralFailure.
func (p *Player) ResetToBindPose() {
	for i, b := range p.skel.Bones {
		p.localPose[i] = b.LocalBind
		p.modelPose[i] = b.ModelBind
	}
}
