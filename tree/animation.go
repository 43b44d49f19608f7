package tree

import (
	"fmt"

	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/player"
)

// animationNode is a leaf: one clip, its own PlayState independent of the
// Player's per-clip dictionary (a tree can play a clip the Player is not
// separately tracking), and the bookkeeping root-motion extraction needs.
type animationNode struct {
	clipIndex int
	state     player.PlayState
	// looper controls whether a looping clip can ever report AnodeDone —
	// without it, a looping animation would never hand off to a
	// successor state purely by entering the cross-fade window.
	looper bool
	evalCB func(bone int, out *clip.Transform)

	hasLast   bool
	lastRoot  clip.Transform
	lastLoops int // clip.RootMotionLoops of the most recent update; -1 means none
}

// AnimationParams configures an Animation leaf at creation.
type AnimationParams struct {
	ClipIndex int
	Speed     float32
	Weight    float32
	Loop      bool
	Play      bool
	Looper    bool
	EvalCallback func(bone int, out *clip.Transform)
}

// CreateAnimation reserves an Animation leaf playing lib clip params.ClipIndex.
//
// Returns:
//   - NodeHandle: the new leaf's handle
//   - error: ErrCapacityExceeded if the arena is full; ErrInvalidArgument if
//     ClipIndex is out of range for t's player's library
func CreateAnimation(t *Tree, params AnimationParams) (NodeHandle, error) {
	lib := t.player.Library()
	if lib.Index(params.ClipIndex) == nil {
		return InvalidHandle, invalidArg("clip index %d out of range", params.ClipIndex)
	}
	if err := t.reserve(); err != nil {
		return InvalidHandle, err
	}
	speed := params.Speed
	if speed == 0 {
		speed = 1
	}
	weight := params.Weight
	if weight == 0 {
		weight = 1
	}
	n := animationNode{
		clipIndex: params.ClipIndex,
		state: player.PlayState{
			Speed:  speed,
			Weight: weight,
			Loop:   params.Loop,
			Play:   params.Play,
		},
		looper:    params.Looper,
		evalCB:    params.EvalCallback,
		lastLoops: -1,
	}
	t.animations = append(t.animations, n)
	return NodeHandle{Kind: KindAnimation, Index: int32(len(t.animations) - 1)}, nil
}

// updateAnimation advances n's clock and reports AnodeDone per §4.3.1: true
// once currentTime has entered the caller's requested cross-fade window and
// either the clip isn't looping or the looper flag says loops count as done.
func (t *Tree) updateAnimation(n *animationNode, elapsed float32, info *UpdateInfo) error {
	c := t.player.Library().Index(n.clipIndex)
	if c == nil {
		return fmt.Errorf("tree: %w: animation node's clip index %d no longer valid", ErrInvalidKind, n.clipIndex)
	}
	duration := c.DurationSeconds()
	if n.state.Play {
		newTime, rawLoops, _ := clip.Advance(n.state.CurrentTime, elapsed, n.state.Speed, duration, n.state.Loop)
		n.state.CurrentTime = newTime
		n.lastLoops = clip.RootMotionLoops(rawLoops)
	} else {
		n.lastLoops = -1
	}

	inWindow := false
	if n.state.Speed >= 0 {
		inWindow = n.state.CurrentTime >= duration-info.XFade
	} else {
		inWindow = n.state.CurrentTime <= info.XFade
	}
	done := inWindow
	if n.state.Loop && !n.looper {
		done = false
	}
	info.AnodeDone = done
	info.ConsumedTime = elapsed
	return nil
}

// evalAnimation samples n's clip at the current time for bone. A bone with
// no channel in the clip yields a ZeroTransform, not an identity transform:
// it must vanish from a weighted sum rather than contribute a spurious
// identity rotation.
func (t *Tree) evalAnimation(n *animationNode, bone int, out *clip.Transform, rm *RootMotion) error {
	c := t.player.Library().Index(n.clipIndex)
	if c == nil {
		return fmt.Errorf("tree: %w: animation node's clip index %d no longer valid", ErrInvalidKind, n.clipIndex)
	}
	ch := c.Channel(bone)
	var current clip.Transform
	if ch == nil {
		current = clip.ZeroTransform()
	} else {
		current = clip.Sample(ch, n.state.CurrentTime*c.TicksPerSecond)
	}
	if n.evalCB != nil {
		n.evalCB(bone, &current)
	}
	*out = current

	if rm != nil && ch != nil {
		first, final := clip.RestTransforms(ch)
		rest0, restN := first, final
		if n.state.Speed < 0 {
			rest0, restN = restN, rest0
		}
		// With no cached transform (a new or freshly reset leaf, both at
		// time zero), the previous pose is the clip's first key.
		last := first
		if n.hasLast {
			last = n.lastRoot
		}
		if n.lastLoops < 0 {
			rm.Motion = current.Sub(last)
		} else {
			loops := float32(n.lastLoops)
			span := restN.Sub(rest0)
			rm.Motion = span.Scaled(loops).Add(restN.Sub(last)).Add(current.Sub(rest0)).Normalized()
		}
		rm.Distance = current.Sub(rest0)
	}

	n.lastRoot = current
	n.hasLast = true
	return nil
}

// AnimationState returns a copy of the leaf's current playback state.
func AnimationState(t *Tree, h NodeHandle) (player.PlayState, error) {
	n, err := t.animation(h)
	if err != nil {
		return player.PlayState{}, err
	}
	return n.state, nil
}

// SetAnimationState overwrites the leaf's playback state wholesale — the
// tree-node analogue of the Player's individual setters, since an Animation
// leaf's PlayState is private to the node, not shared with the Player.
func SetAnimationState(t *Tree, h NodeHandle, s player.PlayState) error {
	n, err := t.animation(h)
	if err != nil {
		return err
	}
	n.state = s
	return nil
}
