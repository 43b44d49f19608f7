// Package clip holds the keyframed animation data model and the channel
// sampler that turns a clip and a time into a per-bone transform.
//
// A Clip is an opaque descriptor handed in by an importer (out of scope for
// this module, which contains no importer): a duration in
// ticks, a ticks-per-second rate, and a set of per-bone Channels. Nothing in
// this package parses a file format; it only samples data that is already
// in memory.
package clip

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a local translation/rotation/scale triple. It is the unit of
// currency passed between the clip sampler, the player, and every tree node.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the transform that contributes nothing when
// composed into a local matrix: zero translation, identity rotation, unit
// scale.
func IdentityTransform() Transform {
	return Transform{
		Translation: mgl32.Vec3{0, 0, 0},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// ZeroTransform returns the transform that contributes nothing when summed
// into a weighted accumulator. Unlike IdentityTransform its rotation is the
// zero quaternion rather than the identity quaternion — a zero contribution
// must vanish from an additive blend, and an identity rotation would not.
func ZeroTransform() Transform {
	return Transform{}
}

// vectorKeys is one sub-stream of a channel: ascending timestamps paired
// with translation or scale samples.
type vectorKeys struct {
	times  []float32
	values []mgl32.Vec3
}

// quatKeys is one sub-stream of a channel carrying rotation samples.
type quatKeys struct {
	times  []float32
	values []mgl32.Quat
}

// Channel is the keyframe stream for one bone in one Clip, split into three
// independently-sized sub-streams. Any of the three may be empty; a bone
// with no channel at all simply has no Channel entry in the owning Clip.
type Channel struct {
	BoneIndex   int
	Translation vectorKeys
	Rotation    quatKeys
	Scale       vectorKeys
}

// NewChannel builds a Channel for boneIndex from parallel time/value slices.
// It does not copy the slices; callers that mutate them afterward will see
// the mutation reflected in the channel.
//
// Parameters:
//   - boneIndex: the bone this channel animates
//   - tTimes, tValues: translation sub-stream (ascending times, matching length)
//   - rTimes, rValues: rotation sub-stream
//   - sTimes, sValues: scale sub-stream
//
// Returns:
//   - Channel: the assembled channel, unvalidated
func NewChannel(boneIndex int, tTimes []float32, tValues []mgl32.Vec3, rTimes []float32, rValues []mgl32.Quat, sTimes []float32, sValues []mgl32.Vec3) Channel {
	return Channel{
		BoneIndex:   boneIndex,
		Translation: vectorKeys{times: tTimes, values: tValues},
		Rotation:    quatKeys{times: rTimes, values: rValues},
		Scale:       vectorKeys{times: sTimes, values: sValues},
	}
}

// Clip is one keyframed animation: a fixed duration, a tick rate, and the
// ordered channels that drive the bones it touches. A Clip is immutable once
// built and is owned by a Library for the lifetime of that library.
type Clip struct {
	Name            string
	DurationTicks   float32
	TicksPerSecond  float32
	Channels        []Channel
}

// DurationSeconds converts the clip's tick-based duration into seconds using
// its own ticks-per-second rate.
func (c *Clip) DurationSeconds() float32 {
	if c.TicksPerSecond == 0 {
		return 0
	}
	return c.DurationTicks / c.TicksPerSecond
}

// Channel returns the channel animating boneIndex, or nil if the bone has no
// channel in this clip. Implemented as a linear scan over Channels: clips
// carry at most a few dozen channels, so there is no benefit to indexing it.
func (c *Clip) Channel(boneIndex int) *Channel {
	for i := range c.Channels {
		if c.Channels[i].BoneIndex == boneIndex {
			return &c.Channels[i]
		}
	}
	return nil
}

// Validate checks the external-interface contract §6 places on importer
// output: ascending timestamps and matching times/values lengths in every
// sub-stream of every channel. It does not check for duplicate bone indices
// or for channels referencing bones outside a skeleton, and neither does
// skeleton.Skeleton.Validate, which checks only the skeleton itself.
func (c *Clip) Validate() error {
	for _, ch := range c.Channels {
		if err := validateVectorKeys(ch.Translation); err != nil {
			return fmt.Errorf("clip %q: bone %d translation: %w", c.Name, ch.BoneIndex, err)
		}
		if err := validateQuatKeys(ch.Rotation); err != nil {
			return fmt.Errorf("clip %q: bone %d rotation: %w", c.Name, ch.BoneIndex, err)
		}
		if err := validateVectorKeys(ch.Scale); err != nil {
			return fmt.Errorf("clip %q: bone %d scale: %w", c.Name, ch.BoneIndex, err)
		}
	}
	return nil
}
