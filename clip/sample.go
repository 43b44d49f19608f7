package clip

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Sample evaluates channel at tTicks, binary-searching each of the three
// sub-streams independently and linearly interpolating between the bracketing
// keyframes (lerp for translation/scale, slerp for rotation). A channel is a
// legal degenerate in any of its three sub-streams: an empty sub-stream
// contributes the identity value for that component.
//
// Parameters:
//   - channel: the per-bone keyframe stream to sample
//   - tTicks: the time to sample at, in the clip's own tick units
//
// Returns:
//   - Transform: the sampled local transform
func Sample(channel *Channel, tTicks float32) Transform {
	return Transform{
		Translation: sampleVec3(channel.Translation, tTicks, mgl32.Vec3{0, 0, 0}),
		Rotation:    sampleQuat(channel.Rotation, tTicks),
		Scale:       sampleVec3(channel.Scale, tTicks, mgl32.Vec3{1, 1, 1}),
	}
}

// RestTransforms returns the first and last keyframe of channel, assembled
// independently per sub-stream (translation/rotation/scale each keep their
// own first/last key; a sub-stream with no keys contributes its identity
// value to both). Used by root-motion extraction to know where a clip
// "starts" and "ends" without resampling at t=0 and t=duration.
func RestTransforms(channel *Channel) (first, last Transform) {
	first = Transform{
		Translation: vecKeyOrDefault(channel.Translation, 0, mgl32.Vec3{0, 0, 0}),
		Rotation:    quatKeyOrDefault(channel.Rotation, 0),
		Scale:       vecKeyOrDefault(channel.Scale, 0, mgl32.Vec3{1, 1, 1}),
	}
	last = Transform{
		Translation: vecKeyOrDefault(channel.Translation, len(channel.Translation.values)-1, mgl32.Vec3{0, 0, 0}),
		Rotation:    quatKeyOrDefault(channel.Rotation, len(channel.Rotation.values)-1),
		Scale:       vecKeyOrDefault(channel.Scale, len(channel.Scale.values)-1, mgl32.Vec3{1, 1, 1}),
	}
	return first, last
}

func vecKeyOrDefault(k vectorKeys, index int, identity mgl32.Vec3) mgl32.Vec3 {
	if index < 0 || index >= len(k.values) {
		return identity
	}
	return k.values[index]
}

func quatKeyOrDefault(k quatKeys, index int) mgl32.Quat {
	if index < 0 || index >= len(k.values) {
		return mgl32.QuatIdent()
	}
	return k.values[index]
}

func sampleVec3(k vectorKeys, t float32, identity mgl32.Vec3) mgl32.Vec3 {
	n := len(k.times)
	if n == 0 {
		return identity
	}
	if n == 1 || t <= k.times[0] {
		return k.values[0]
	}
	if t >= k.times[n-1] {
		return k.values[n-1]
	}
	i := bracket(k.times, t)
	alpha := (t - k.times[i]) / (k.times[i+1] - k.times[i])
	return lerpVec3(k.values[i], k.values[i+1], alpha)
}

func sampleQuat(k quatKeys, t float32) mgl32.Quat {
	n := len(k.times)
	if n == 0 {
		return mgl32.QuatIdent()
	}
	if n == 1 || t <= k.times[0] {
		return k.values[0]
	}
	if t >= k.times[n-1] {
		return k.values[n-1]
	}
	i := bracket(k.times, t)
	alpha := (t - k.times[i]) / (k.times[i+1] - k.times[i])
	return mgl32.QuatSlerp(k.values[i], k.values[i+1], alpha)
}

// bracket returns the index i such that times[i] <= t < times[i+1]. Callers
// must have already handled the t <= times[0] and t >= times[last] cases.
func bracket(times []float32, t float32) int {
	i := sort.Search(len(times), func(i int) bool { return times[i] > t })
	if i == 0 {
		return 0
	}
	return i - 1
}

func lerpVec3(a, b mgl32.Vec3, alpha float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(alpha))
}
