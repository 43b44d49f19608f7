package tree

import (
	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/skeleton"
)

// blend2Node linearly interpolates two inputs by a normalized weight,
// optionally restricted to a subset of bones by mask.
type blend2Node struct {
	inMain, inBlend NodeHandle
	weight          float32
	mask            *skeleton.BoneMask
}

// Blend2Params configures a Blend2 node at creation. Inputs are wired
// afterward with Tree.AddInput.
type Blend2Params struct {
	Weight float32
	Mask   *skeleton.BoneMask // nil = no mask, blend applies to every bone
}

// CreateBlend2 reserves a Blend2 node.
func CreateBlend2(t *Tree, params Blend2Params) (NodeHandle, error) {
	if err := t.reserve(); err != nil {
		return InvalidHandle, err
	}
	t.blend2s = append(t.blend2s, blend2Node{
		inMain:  InvalidHandle,
		inBlend: InvalidHandle,
		weight:  clamp01(params.Weight),
		mask:    params.Mask,
	})
	return NodeHandle{Kind: KindBlend2, Index: int32(len(t.blend2s) - 1)}, nil
}

// SetBlend2Weight sets a Blend2 node's blend weight, clamped to [0,1].
func SetBlend2Weight(t *Tree, h NodeHandle, weight float32) error {
	n, err := t.blend2(h)
	if err != nil {
		return err
	}
	n.weight = clamp01(weight)
	return nil
}

func (t *Tree) updateBlend2(n *blend2Node, elapsed float32, info *UpdateInfo) error {
	if err := t.updateNode(n.inMain, elapsed, info); err != nil {
		return err
	}
	blendInfo := UpdateInfo{}
	if err := t.updateNode(n.inBlend, elapsed, &blendInfo); err != nil {
		return err
	}
	return nil
}

func (t *Tree) evalBlend2(n *blend2Node, bone int, out *clip.Transform, rm *RootMotion) error {
	var mainOut clip.Transform
	var mainRM RootMotion
	var mainRMPtr *RootMotion
	if rm != nil {
		mainRMPtr = &mainRM
	}
	if err := t.evalNode(n.inMain, bone, &mainOut, mainRMPtr); err != nil {
		return err
	}

	if n.mask != nil && !n.mask.Test(bone) {
		*out = mainOut
		if rm != nil {
			*rm = mainRM
		}
		return nil
	}

	var blendOut clip.Transform
	var blendRM RootMotion
	var blendRMPtr *RootMotion
	if rm != nil {
		blendRMPtr = &blendRM
	}
	if err := t.evalNode(n.inBlend, bone, &blendOut, blendRMPtr); err != nil {
		return err
	}

	*out = mainOut.Lerp(blendOut, n.weight)
	if rm != nil {
		rm.Motion = mainRM.Motion.Lerp(blendRM.Motion, n.weight)
		rm.Distance = mainRM.Distance.Lerp(blendRM.Distance, n.weight)
	}
	return nil
}
