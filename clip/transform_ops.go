package clip

import "github.com/go-gl/mathgl/mgl32"

// Add returns the component-wise sum of a and b. Rotation is summed as a
// plain quaternion sum, not composed (a.Rotation * b.Rotation) and not
// slerped — this is the additive-delta blend that Add2 and root-motion
// accumulation both rely on; callers normalize the rotation afterward when
// the result needs to be a unit quaternion again.
func (a Transform) Add(b Transform) Transform {
	return Transform{
		Translation: a.Translation.Add(b.Translation),
		Rotation:    a.Rotation.Add(b.Rotation),
		Scale:       a.Scale.Add(b.Scale),
	}
}

// Sub returns the component-wise difference a - b, same additive convention
// as Add.
func (a Transform) Sub(b Transform) Transform {
	return Transform{
		Translation: a.Translation.Sub(b.Translation),
		Rotation:    a.Rotation.Sub(b.Rotation),
		Scale:       a.Scale.Sub(b.Scale),
	}
}

// Scaled returns every component of a multiplied by w.
func (a Transform) Scaled(w float32) Transform {
	return Transform{
		Translation: a.Translation.Mul(w),
		Rotation:    a.Rotation.Scale(w),
		Scale:       a.Scale.Mul(w),
	}
}

// Lerp linearly interpolates translation and scale and additively blends
// rotation (weighted sum, renormalized) between a (t=0) and b (t=1). This is
// the blend used by Blend2, Switch, and Stm cross-fades — see spec.md's
// resolved "additive, not slerp" choice for multi-input pose blending.
func (a Transform) Lerp(b Transform, t float32) Transform {
	return a.Scaled(1 - t).Add(b.Scaled(t)).Normalized()
}

// Normalized returns a copy of a with its rotation renormalized to unit
// length. A zero or near-zero rotation (e.g. a ZeroTransform that was never
// added to anything) normalizes to the identity quaternion rather than
// propagating NaN.
func (a Transform) Normalized() Transform {
	if lenSq := a.Rotation.Dot(a.Rotation); lenSq > 1e-12 {
		a.Rotation = a.Rotation.Normalize()
	} else {
		a.Rotation = mgl32.QuatIdent()
	}
	return a
}

// Mat4 composes a into a single 4x4 local matrix: translate * rotate * scale.
func (a Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(a.Translation[0], a.Translation[1], a.Translation[2]).
		Mul4(a.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(a.Scale[0], a.Scale[1], a.Scale[2]))
}
