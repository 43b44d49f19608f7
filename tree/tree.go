// Package tree implements the animation graph: a fixed-capacity arena of
// polymorphic nodes (Animation, Blend2, Add2, Switch, Stm, StmExit)
// traversed twice a frame — update(elapsed) to advance time and state,
// eval(bone) to produce a blended local transform — plus the state-machine
// sub-module and root-motion extraction that sit inside it.
package tree

import (
	"errors"
	"fmt"

	"github.com/ashgrove-engine/animtree/clip"
	"github.com/ashgrove-engine/animtree/player"
)

// Tree is an animation graph built against one Player. Every node the tree
// owns is created through a Create* call on the tree and is referenced
// thereafter only by NodeHandle; destroying the tree frees every node in
// one operation.
type Tree struct {
	player   *player.Player
	maxNodes int
	nodeCount int

	animations []animationNode
	blend2s    []blend2Node
	add2s      []add2Node
	switches   []switchNode
	stms       []stmNode
	stmExits   []stmExitNode

	root     NodeHandle
	rootBone int // -1 = none designated

	postEval func(bone int, out *clip.Transform)

	lastSkin []byte
}

// Option configures a Tree during construction.
type Option func(*Tree)

// WithRootBone is an option builder that designates which bone root-motion
// extraction applies to.
//
// Parameters:
//   - boneIndex: the skeleton bone index treated as the root for motion
//     purposes
//
// Returns:
//   - Option: a function that applies the root-bone option to a Tree
func WithRootBone(boneIndex int) Option {
	return func(t *Tree) {
		t.rootBone = boneIndex
	}
}

// WithUpdateCallback is an option builder that registers the per-bone
// post-eval callback described in §4.5 step 2. It runs synchronously on the
// update thread after a bone's transform is produced and before it is
// composed into a matrix; it may mutate the transform in place and must not
// call back into the tree.
func WithUpdateCallback(fn func(bone int, out *clip.Transform)) Option {
	return func(t *Tree) {
		t.postEval = fn
	}
}

// New builds an empty Tree with room for up to maxNodes nodes total, shared
// across every kind. A tree has no root until AddRoot is called.
//
// Parameters:
//   - p: the player this tree poses; owned by the tree thereafter
//   - maxNodes: the combined capacity of every node kind's arena
//   - opts: construction-time options
//
// Returns:
//   - *Tree: the constructed, empty tree
//   - error: non-nil if maxNodes <= 0
func New(p *player.Player, maxNodes int, opts ...Option) (*Tree, error) {
	if maxNodes <= 0 {
		return nil, invalidArg("maxNodes must be positive")
	}
	t := &Tree{
		player:   p,
		maxNodes: maxNodes,
		root:     InvalidHandle,
		rootBone: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// reserve consumes one unit of the tree's shared node capacity. Every
// Create* call must call this before appending to its kind-specific arena.
func (t *Tree) reserve() error {
	if t.nodeCount >= t.maxNodes {
		logger.Printf("tree: node arena full (capacity %d)", t.maxNodes)
		return ErrCapacityExceeded
	}
	t.nodeCount++
	return nil
}

// AddRoot designates h as the tree's root node.
func (t *Tree) AddRoot(h NodeHandle) error {
	if !h.Valid() {
		return invalidArg("invalid root handle")
	}
	t.root = h
	return nil
}

// Root returns the tree's current root handle, or InvalidHandle if none has
// been set.
func (t *Tree) Root() NodeHandle { return t.root }

// Player returns the player this tree poses.
func (t *Tree) Player() *player.Player { return t.player }

// AddInput connects child as one of parent's inputs. Which input indices are
// valid depends on parent's kind: Blend2 and Add2 accept 0 (main) and 1
// (blend/add); Switch accepts 0..N-1 for the N inputs it was created with.
// Animation, Stm, and StmExit do not accept children through AddInput.
//
// Returns:
//   - error: ErrInvalidArgument if the parent kind does not accept children
//     this way or inputIndex is out of range
func (t *Tree) AddInput(parent NodeHandle, child NodeHandle, inputIndex int) error {
	switch parent.Kind {
	case KindBlend2:
		n, err := t.blend2(parent)
		if err != nil {
			return err
		}
		switch inputIndex {
		case 0:
			n.inMain = child
		case 1:
			n.inBlend = child
		default:
			return invalidArg("Blend2 input index %d out of range", inputIndex)
		}
		return nil
	case KindAdd2:
		n, err := t.add2(parent)
		if err != nil {
			return err
		}
		switch inputIndex {
		case 0:
			n.inMain = child
		case 1:
			n.inAdd = child
		default:
			return invalidArg("Add2 input index %d out of range", inputIndex)
		}
		return nil
	case KindSwitch:
		n, err := t.switchNode(parent)
		if err != nil {
			return err
		}
		if inputIndex < 0 || inputIndex >= len(n.inputs) {
			return invalidArg("Switch input index %d out of range", inputIndex)
		}
		n.inputs[inputIndex] = child
		return nil
	default:
		return invalidArg("%s nodes do not accept inputs via AddInput", parent.Kind)
	}
}

// updateNode dispatches update to the concrete node h refers to.
func (t *Tree) updateNode(h NodeHandle, elapsed float32, info *UpdateInfo) error {
	if !h.Valid() {
		return fmt.Errorf("tree: %w: update on invalid handle", ErrInvalidKind)
	}
	switch h.Kind {
	case KindAnimation:
		n, err := t.animation(h)
		if err != nil {
			return err
		}
		return t.updateAnimation(n, elapsed, info)
	case KindBlend2:
		n, err := t.blend2(h)
		if err != nil {
			return err
		}
		return t.updateBlend2(n, elapsed, info)
	case KindAdd2:
		n, err := t.add2(h)
		if err != nil {
			return err
		}
		return t.updateAdd2(n, elapsed, info)
	case KindSwitch:
		n, err := t.switchNode(h)
		if err != nil {
			return err
		}
		return t.updateSwitch(n, elapsed, info)
	case KindStm:
		n, err := t.stm(h)
		if err != nil {
			return err
		}
		return t.updateStm(n, elapsed, info)
	case KindStmExit:
		n, err := t.stmExit(h)
		if err != nil {
			return err
		}
		return t.updateNode(n.child, elapsed, info)
	default:
		return fmt.Errorf("tree: %w: kind tag %d", ErrInvalidKind, h.Kind)
	}
}

// evalNode dispatches eval to the concrete node h refers to.
func (t *Tree) evalNode(h NodeHandle, bone int, out *clip.Transform, rm *RootMotion) error {
	if !h.Valid() {
		return fmt.Errorf("tree: %w: eval on invalid handle", ErrInvalidKind)
	}
	switch h.Kind {
	case KindAnimation:
		n, err := t.animation(h)
		if err != nil {
			return err
		}
		return t.evalAnimation(n, bone, out, rm)
	case KindBlend2:
		n, err := t.blend2(h)
		if err != nil {
			return err
		}
		return t.evalBlend2(n, bone, out, rm)
	case KindAdd2:
		n, err := t.add2(h)
		if err != nil {
			return err
		}
		return t.evalAdd2(n, bone, out, rm)
	case KindSwitch:
		n, err := t.switchNode(h)
		if err != nil {
			return err
		}
		return t.evalSwitch(n, bone, out, rm)
	case KindStm:
		n, err := t.stm(h)
		if err != nil {
			return err
		}
		return t.evalStm(n, bone, out, rm)
	case KindStmExit:
		n, err := t.stmExit(h)
		if err != nil {
			return err
		}
		return t.evalNode(n.child, bone, out, rm)
	default:
		return fmt.Errorf("tree: %w: kind tag %d", ErrInvalidKind, h.Kind)
	}
}

// resetNode rewinds the sub-tree rooted at h: Animation leaves rewind their
// clock to zero, composites recurse into the children whose clocks matter
// (both inputs for Blend2/Add2, the active input for Switch, the whole
// state machine for Stm per its own Reset semantics).
func (t *Tree) resetNode(h NodeHandle) {
	if !h.Valid() {
		return
	}
	switch h.Kind {
	case KindAnimation:
		if n, err := t.animation(h); err == nil {
			n.state.CurrentTime = 0
			n.hasLast = false
			n.lastLoops = -1
		}
	case KindBlend2:
		if n, err := t.blend2(h); err == nil {
			t.resetNode(n.inMain)
			t.resetNode(n.inBlend)
		}
	case KindAdd2:
		if n, err := t.add2(h); err == nil {
			t.resetNode(n.inMain)
			t.resetNode(n.inAdd)
		}
	case KindSwitch:
		if n, err := t.switchNode(h); err == nil && n.active >= 0 && n.active < len(n.inputs) {
			t.resetNode(n.inputs[n.active])
		}
	case KindStm:
		if n, err := t.stm(h); err == nil {
			t.ResetStm(h, n)
		}
	case KindStmExit:
		if n, err := t.stmExit(h); err == nil {
			t.resetNode(n.child)
		}
	}
}

// Update runs one frame: update(root, dt) then eval(root, bone) for every
// bone in order, composing the local pose and finally the model pose and
// skin matrices. On a StructuralFailure the pose falls back to the
// skeleton's bind pose and the failure is logged; Update itself still
// returns nil since the tree has recovered to a well-defined state.
func (t *Tree) Update(dt float32) error {
	_, err := t.update(dt, false)
	return err
}

// UpdateWithRootMotion is Update, additionally returning the root bone's
// accumulated motion and distance transforms for this frame. Both are zero
// if the tree has no designated root bone.
func (t *Tree) UpdateWithRootMotion(dt float32) (motion, distance clip.Transform, err error) {
	rm, err := t.update(dt, true)
	return rm.Motion, rm.Distance, err
}

func (t *Tree) update(dt float32, wantRootMotion bool) (RootMotion, error) {
	var rm RootMotion
	if dt < 0 {
		return rm, invalidArg("Update called with negative dt %v", dt)
	}
	if !t.root.Valid() {
		return rm, invalidArg("no root node")
	}

	info := UpdateInfo{}
	if err := t.updateNode(t.root, dt, &info); err != nil {
		if isStructuralFailure(err) {
			logger.Printf("ERROR: tree update failed structurally: %v; falling back to bind pose", err)
			t.player.ResetToBindPose()
			t.lastSkin = t.player.UploadSkin()
			return rm, nil
		}
		return rm, err
	}

	skel := t.player.Skeleton()
	n := skel.BoneCount()
	local := t.player.LocalPose()
	for bone := 0; bone < n; bone++ {
		var out clip.Transform
		var bonerm *RootMotion
		if bone == t.rootBone {
			bonerm = &rm
		}
		if err := t.evalNode(t.root, bone, &out, bonerm); err != nil {
			if isStructuralFailure(err) {
				logger.Printf("ERROR: tree eval failed structurally: %v; falling back to bind pose", err)
				t.player.ResetToBindPose()
				t.lastSkin = t.player.UploadSkin()
				return RootMotion{}, nil
			}
			return rm, err
		}
		if bone == t.rootBone {
			out = out.Sub(rm.Distance)
		}
		if t.postEval != nil {
			t.postEval(bone, &out)
		}
		local[bone] = out.Mat4()
	}

	t.player.ComputeModelPose()
	t.lastSkin = t.player.UploadSkin()
	if !wantRootMotion {
		rm = RootMotion{}
	}
	return rm, nil
}

// SkinBytes returns the skin matrices produced by the most recent Update
// call, as a flat little-endian byte range ready for an external skinning
// buffer.
func (t *Tree) SkinBytes() []byte { return t.lastSkin }

func (t *Tree) animation(h NodeHandle) (*animationNode, error) {
	if h.Kind != KindAnimation || h.Index < 0 || int(h.Index) >= len(t.animations) {
		return nil, errors.New("tree: bad Animation handle")
	}
	return &t.animations[h.Index], nil
}

func (t *Tree) blend2(h NodeHandle) (*blend2Node, error) {
	if h.Kind != KindBlend2 || h.Index < 0 || int(h.Index) >= len(t.blend2s) {
		return nil, errors.New("tree: bad Blend2 handle")
	}
	return &t.blend2s[h.Index], nil
}

func (t *Tree) add2(h NodeHandle) (*add2Node, error) {
	if h.Kind != KindAdd2 || h.Index < 0 || int(h.Index) >= len(t.add2s) {
		return nil, errors.New("tree: bad Add2 handle")
	}
	return &t.add2s[h.Index], nil
}

func (t *Tree) switchNode(h NodeHandle) (*switchNode, error) {
	if h.Kind != KindSwitch || h.Index < 0 || int(h.Index) >= len(t.switches) {
		return nil, errors.New("tree: bad Switch handle")
	}
	return &t.switches[h.Index], nil
}

func (t *Tree) stm(h NodeHandle) (*stmNode, error) {
	if h.Kind != KindStm || h.Index < 0 || int(h.Index) >= len(t.stms) {
		return nil, errors.New("tree: bad Stm handle")
	}
	return &t.stms[h.Index], nil
}

func (t *Tree) stmExit(h NodeHandle) (*stmExitNode, error) {
	if h.Kind != KindStmExit || h.Index < 0 || int(h.Index) >= len(t.stmExits) {
		return nil, errors.New("tree: bad StmExit handle")
	}
	return &t.stmExits[h.Index], nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
