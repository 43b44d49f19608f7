package tree

import (
	"github.com/ashgrove-engine/animtree/clip"
)

// switchNode cross-fades between N inputs selected by index. Every input is
// updated every frame; synced skips the reset of a newly active input so its
// phase stays aligned with the others.
type switchNode struct {
	inputs    []NodeHandle
	weights   []float32
	invSum    float32
	active    int
	lastActive int
	synced    bool
	xFadeTime float32
}

// SwitchParams configures a Switch node at creation.
type SwitchParams struct {
	InputCount int
	Active     int
	Synced     bool
	XFadeTime  float32
}

// CreateSwitch reserves a Switch node with params.InputCount inputs, all
// initially InvalidHandle (wire them with Tree.AddInput). Exactly at
// creation the active input's weight is 1 and every other input's is 0, per
// §4.3.4's first bullet.
func CreateSwitch(t *Tree, params SwitchParams) (NodeHandle, error) {
	if params.InputCount <= 0 {
		return InvalidHandle, invalidArg("Switch needs at least one input")
	}
	if params.Active < 0 || params.Active >= params.InputCount {
		return InvalidHandle, invalidArg("Switch active index %d out of range", params.Active)
	}
	if err := t.reserve(); err != nil {
		return InvalidHandle, err
	}
	inputs := make([]NodeHandle, params.InputCount)
	weights := make([]float32, params.InputCount)
	for i := range inputs {
		inputs[i] = InvalidHandle
	}
	weights[params.Active] = 1
	t.switches = append(t.switches, switchNode{
		inputs:     inputs,
		weights:    weights,
		invSum:     1,
		active:     params.Active,
		lastActive: params.Active,
		synced:     params.Synced,
		xFadeTime:  params.XFadeTime,
	})
	return NodeHandle{Kind: KindSwitch, Index: int32(len(t.switches) - 1)}, nil
}

// SetSwitchActive changes which input a Switch node is cross-fading toward.
// The weight ramp and (if !synced) the reset of the newly active input
// happen on the next update, not immediately.
func SetSwitchActive(t *Tree, h NodeHandle, active int) error {
	n, err := t.switchNode(h)
	if err != nil {
		return err
	}
	if active < 0 || active >= len(n.inputs) {
		return invalidArg("Switch active index %d out of range", active)
	}
	n.active = active
	return nil
}

func (t *Tree) updateSwitch(n *switchNode, elapsed float32, info *UpdateInfo) error {
	if n.active != n.lastActive {
		if !n.synced {
			t.resetNode(n.inputs[n.active])
		}
		n.lastActive = n.active
		if n.xFadeTime <= 0 {
			for i := range n.weights {
				n.weights[i] = 0
			}
			n.weights[n.active] = 1
		}
	}

	if n.xFadeTime > 0 {
		rate := elapsed / n.xFadeTime
		for i := range n.weights {
			if i == n.active {
				n.weights[i] = clamp01(n.weights[i] + rate)
			} else {
				n.weights[i] = clamp01(n.weights[i] - rate)
			}
		}
	}

	sum := float32(0)
	for _, w := range n.weights {
		sum += w
	}
	if sum <= 0 {
		n.weights[n.active] = 1
		sum = 1
	}
	n.invSum = 1 / sum

	info.ConsumedTime = elapsed
	info.AnodeDone = false
	for i, in := range n.inputs {
		childInfo := UpdateInfo{XFade: info.XFade}
		if err := t.updateNode(in, elapsed, &childInfo); err != nil {
			return err
		}
		if i == n.active {
			info.AnodeDone = childInfo.AnodeDone
		}
	}
	return nil
}

func (t *Tree) evalSwitch(n *switchNode, bone int, out *clip.Transform, rm *RootMotion) error {
	acc := clip.ZeroTransform()
	var rmAcc RootMotion
	for i, in := range n.inputs {
		w := n.weights[i] * n.invSum
		if w == 0 {
			continue
		}
		var childOut clip.Transform
		var childRM RootMotion
		var childRMPtr *RootMotion
		if rm != nil {
			childRMPtr = &childRM
		}
		if err := t.evalNode(in, bone, &childOut, childRMPtr); err != nil {
			return err
		}
		acc = acc.Add(childOut.Scaled(w))
		if rm != nil {
			rmAcc.Motion = rmAcc.Motion.Add(childRM.Motion.Scaled(w))
			rmAcc.Distance = rmAcc.Distance.Add(childRM.Distance.Scaled(w))
		}
	}
	*out = acc.Normalized()
	if rm != nil {
		*rm = RootMotion{Motion: rmAcc.Motion.Normalized(), Distance: rmAcc.Distance.Normalized()}
	}
	return nil
}
