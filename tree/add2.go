package tree

import (
	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/skeleton"
)

// add2Node additively layers inAdd onto inMain: mainT + w*addT component
// -wise, a delta-pose layer rather than a blend.
type add2Node struct {
	inMain, inAdd NodeHandle
	weight        float32
	mask          *skeleton.BoneMask
}

// Add2Params configures an Add2 node at creation.
type Add2Params struct {
	Weight float32
	Mask   *skeleton.BoneMask
}

// CreateAdd2 reserves an Add2 node.
func CreateAdd2(t *Tree, params Add2Params) (NodeHandle, error) {
	if err := t.reserve(); err != nil {
		return InvalidHandle, err
	}
	t.add2s = append(t.add2s, add2Node{
		inMain: InvalidHandle,
		inAdd:  InvalidHandle,
		weight: clamp01(params.Weight),
		mask:   params.Mask,
	})
	return NodeHandle{Kind: KindAdd2, Index: int32(len(t.add2s) - 1)}, nil
}

// SetAdd2Weight sets an Add2 node's layer weight, clamped to [0,1].
func SetAdd2Weight(t *Tree, h NodeHandle, weight float32) error {
	n, err := t.add2(h)
	if err != nil {
		return err
	}
	n.weight = clamp01(weight)
	return nil
}

func (t *Tree) updateAdd2(n *add2Node, elapsed float32, info *UpdateInfo) error {
	if err := t.updateNode(n.inMain, elapsed, info); err != nil {
		return err
	}
	addInfo := UpdateInfo{}
	if err := t.updateNode(n.inAdd, elapsed, &addInfo); err != nil {
		return err
	}
	return nil
}

func (t *Tree) evalAdd2(n *add2Node, bone int, out *clip.Transform, rm *RootMotion) error {
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

	var addOut clip.Transform
	var addRM RootMotion
	var addRMPtr *RootMotion
	if rm != nil {
		addRMPtr = &addRM
	}
	if err := t.evalNode(n.inAdd, bone, &addOut, addRMPtr); err != nil {
		return err
	}

	*out = mainOut.Add(addOut.Scaled(n.weight)).Normalized()
	if rm != nil {
		rm.Motion = mainRM.Motion.Add(addRM.Motion.Scaled(n.weight)).Normalized()
		rm.Distance = mainRM.Distance.Add(addRM.Distance.Scaled(n.weight)).Normalized()
	}
	return nil
}
