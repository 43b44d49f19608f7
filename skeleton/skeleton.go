// Package skeleton holds the bone-hierarchy data model that a Player and a
// Tree are built against. Like clip, it treats its input as an opaque
// descriptor handed in by an importer; nothing here parses a file format.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxBones is the largest bone count a Skeleton may have — it is the
// capacity of the 256-bit BoneMask used by Blend2 and Add2.
const MaxBones = 256

// ErrTooManyBones is returned when a skeleton (or a mask built against one)
// exceeds MaxBones.
var ErrTooManyBones = errors.New("skeleton: bone count exceeds 256")

// Bone is one rigid node of the hierarchy.
type Bone struct {
	Name   string
	Parent int // -1 for the root bone
	// LocalBind is the bone's rest transform in its parent's frame.
	LocalBind mgl32.Mat4
	// ModelBind is the bone's rest transform in the skeleton's root frame.
	ModelBind mgl32.Mat4
	// InverseBind maps a vertex from model space into this bone's bind
	// space; used to compute the final skin matrix.
	InverseBind mgl32.Mat4
}

// Skeleton is an immutable bone hierarchy: an ordered list of bones where a
// parent always precedes its children, plus a root-level bind matrix for
// bones with no parent.
type Skeleton struct {
	Bones        []Bone
	RootBind     mgl32.Mat4
	nameToIndex  map[string]int
}

// New builds a Skeleton from bones already in topological order (parent
// index < child index). It does not validate; call Validate explicitly
// (player.New does so for the skeleton it is given).
func New(bones []Bone, rootBind mgl32.Mat4) *Skeleton {
	s := &Skeleton{
		Bones:       append([]Bone(nil), bones...),
		RootBind:    rootBind,
		nameToIndex: make(map[string]int, len(bones)),
	}
	for i, b := range s.Bones {
		if b.Name != "" {
			s.nameToIndex[b.Name] = i
		}
	}
	return s
}

// BoneCount returns the number of bones in the skeleton.
func (s *Skeleton) BoneCount() int { return len(s.Bones) }

// IndexOf looks up a bone by name.
//
// Returns:
//   - int: the bone's index
//   - bool: false if no bone with that name exists
func (s *Skeleton) IndexOf(name string) (int, bool) {
	i, ok := s.nameToIndex[name]
	return i, ok
}

// Validate checks the two invariants §4.2 and §3 place on an imported
// skeleton: bone count within MaxBones, and every bone's parent index less
// than its own index (topological order, and implicitly acyclic).
func (s *Skeleton) Validate() error {
	if len(s.Bones) > MaxBones {
		return ErrTooManyBones
	}
	for i, b := range s.Bones {
		if b.Parent == -1 {
			continue
		}
		if b.Parent < 0 || b.Parent >= i {
			return fmt.Errorf("skeleton: bone %d (%q) has parent %d, want -1 or < %d", i, b.Name, b.Parent, i)
		}
	}
	return nil
}

// ComputeModelPose writes modelPose[b] = localPose[b] * modelPose[parent]
// (or * RootBind when the bone has no parent) for every bone, in index
// order. out must already be sized to s.BoneCount().
func (s *Skeleton) ComputeModelPose(localPose []mgl32.Mat4, out []mgl32.Mat4) {
	for i, b := range s.Bones {
		if b.Parent == -1 {
			out[i] = localPose[i].Mul4(s.RootBind)
		} else {
			out[i] = localPose[i].Mul4(out[b.Parent])
		}
	}
}

// ComputeSkin writes skin[b] = InverseBind[b] * modelPose[b] for every bone.
// out must already be sized to s.BoneCount().
func (s *Skeleton) ComputeSkin(modelPose []mgl32.Mat4, out []mgl32.Mat4) {
	for i, b := range s.Bones {
		out[i] = b.InverseBind.Mul4(modelPose[i])
	}
}

// BindLocalPose returns a slice of every bone's LocalBind matrix, the
// fallback pose used when a StructuralFailure forces the tree to bail.
func (s *Skeleton) BindLocalPose() []mgl32.Mat4 {
	out := make([]mgl32.Mat4, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = b.LocalBind
	}
	return out
}
