package tree

import (
	"fmt"

	"github.com/ashgrove-engine/animtree/clip"
)

// EdgeMode selects when a traversable edge actually fires.
type EdgeMode uint8

const (
	// ModeInstant fires as soon as the begin state's incoming cross-fade (if
	// any) has completed, independent of what the begin state's content is
	// doing.
	ModeInstant EdgeMode = iota
	// ModeOnDone fires once the begin state's incoming cross-fade (if any)
	// has completed AND the begin state's child reports AnodeDone.
	ModeOnDone
)

// EdgeStatus controls how an edge may be traversed.
type EdgeStatus uint8

const (
	// StatusOn permits only explicit TravelTo traversal.
	StatusOn EdgeStatus = iota
	// StatusAuto permits both automatic and TravelTo traversal.
	StatusAuto
	// StatusOnce behaves like StatusAuto but flips to NextStatus once
	// traversed.
	StatusOnce
	// StatusOff forbids traversal entirely, including by TravelTo.
	StatusOff
)

// EdgeParams configures an Edge at creation.
type EdgeParams struct {
	Mode       EdgeMode
	Status     EdgeStatus
	NextStatus EdgeStatus
	XFadeTime  float32
}

type edge struct {
	begin, end int
	endWeight  float32
	mode       EdgeMode
	status     EdgeStatus
	nextStatus EdgeStatus
	xFadeTime  float32
}

type state struct {
	child       NodeHandle
	outEdges    []int
	maxOutEdges int
	activeIn    int // edge index, or -1
}

type visitedEntry struct {
	seen      bool
	remaining float32
}

// stmNode is the state-machine node of §4.3.5: a fixed-capacity set of
// states and edges, a single active state, and (if travel was enabled at
// creation) a path plan and the scratch workspaces TravelTo's breadth-first
// search reuses frame to frame.
type stmNode struct {
	states    []state
	edges     []edge
	activeIdx int
	maxStates int
	maxEdges  int

	visited []visitedEntry

	travelEnabled bool
	pathEdges     []int
	pathIdx       int
	pathLen       int

	bfsVisited     []bool
	bfsParentEdge  []int
	bfsQueue       []int
}

// CreateStm reserves a state-machine node with room for up to maxStates
// states and maxEdges edges, both fixed at creation. If travelEnabled,
// TravelTo's breadth-first search workspaces are allocated now so no
// per-call allocation is needed later.
func CreateStm(t *Tree, maxStates, maxEdges int, travelEnabled bool) (NodeHandle, error) {
	if maxStates <= 0 || maxEdges < 0 {
		return InvalidHandle, invalidArg("Stm needs at least one state")
	}
	if err := t.reserve(); err != nil {
		return InvalidHandle, err
	}
	n := stmNode{
		maxStates:     maxStates,
		maxEdges:      maxEdges,
		visited:       make([]visitedEntry, maxStates),
		travelEnabled: travelEnabled,
	}
	if travelEnabled {
		n.pathEdges = make([]int, maxEdges)
		n.bfsVisited = make([]bool, maxStates)
		n.bfsParentEdge = make([]int, maxStates)
		n.bfsQueue = make([]int, 0, maxStates)
	}
	t.stms = append(t.stms, n)
	return NodeHandle{Kind: KindStm, Index: int32(len(t.stms) - 1)}, nil
}

// CreateState reserves a state inside stm wrapping child, with room for up
// to maxOutEdges outgoing edges.
//
// Returns:
//   - int: the new state's index
//   - error: ErrCapacityExceeded if the state list is full
func CreateState(t *Tree, stm NodeHandle, child NodeHandle, maxOutEdges int) (int, error) {
	n, err := t.stm(stm)
	if err != nil {
		return -1, err
	}
	if len(n.states) >= n.maxStates {
		logger.Printf("tree: Stm state list full (capacity %d)", n.maxStates)
		return -1, ErrCapacityExceeded
	}
	n.states = append(n.states, state{
		child:       child,
		outEdges:    make([]int, 0, maxOutEdges),
		maxOutEdges: maxOutEdges,
		activeIn:    -1,
	})
	return len(n.states) - 1, nil
}

// CreateEdge reserves a directed edge from begin to end inside stm.
//
// Returns:
//   - int: the new edge's index
//   - error: ErrInvalidArgument for an out-of-range state index;
//     ErrCapacityExceeded if the edge list or begin's out-edge list is full
func CreateEdge(t *Tree, stm NodeHandle, begin, end int, params EdgeParams) (int, error) {
	n, err := t.stm(stm)
	if err != nil {
		return -1, err
	}
	if begin < 0 || begin >= len(n.states) || end < 0 || end >= len(n.states) {
		return -1, invalidArg("Stm edge references out-of-range state")
	}
	if len(n.edges) >= n.maxEdges {
		logger.Printf("tree: Stm edge list full (capacity %d)", n.maxEdges)
		return -1, ErrCapacityExceeded
	}
	b := &n.states[begin]
	if len(b.outEdges) >= b.maxOutEdges {
		logger.Printf("tree: Stm state %d out-edge list full (capacity %d)", begin, b.maxOutEdges)
		return -1, ErrCapacityExceeded
	}
	idx := len(n.edges)
	n.edges = append(n.edges, edge{
		begin:      begin,
		end:        end,
		mode:       params.Mode,
		status:     params.Status,
		nextStatus: params.NextStatus,
		xFadeTime:  params.XFadeTime,
	})
	b.outEdges = append(b.outEdges, idx)
	return idx, nil
}

// ActiveState returns the Stm's currently active state index.
func ActiveState(t *Tree, h NodeHandle) (int, error) {
	n, err := t.stm(h)
	if err != nil {
		return -1, err
	}
	return n.activeIdx, nil
}

func (n *stmNode) findEdge(s *state) int {
	if n.pathIdx < n.pathLen {
		return n.pathEdges[n.pathIdx]
	}
	for _, ei := range s.outEdges {
		st := n.edges[ei].status
		if st == StatusAuto || st == StatusOnce {
			return ei
		}
	}
	return -1
}

func approxEqualF(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1e-5
}

func (t *Tree) updateStm(n *stmNode, elapsed float32, info *UpdateInfo) error {
	for i := range n.visited {
		n.visited[i] = visitedEntry{}
	}

	remaining := elapsed
	totalConsumed := float32(0)
	maxIterations := len(n.states) + 1

	for iter := 0; ; iter++ {
		if iter > maxIterations {
			return ErrCycleDetected
		}
		if n.activeIdx < 0 || n.activeIdx >= len(n.states) {
			return fmt.Errorf("tree: %w: Stm active index out of range", ErrInvalidKind)
		}
		ve := &n.visited[n.activeIdx]
		if ve.seen && approxEqualF(ve.remaining, remaining) {
			return ErrCycleDetected
		}
		ve.seen = true
		ve.remaining = remaining

		s := &n.states[n.activeIdx]
		wasActiveInSet := s.activeIn >= 0
		edgeCompletedThisFrame := false
		edgeCost := float32(0)

		if wasActiveInSet {
			e := &n.edges[s.activeIn]
			if e.xFadeTime <= 0 {
				e.endWeight = 1
				edgeCompletedThisFrame = true
				edgeCost = 0
			} else {
				increment := remaining / e.xFadeTime
				newWeight := e.endWeight + increment
				if newWeight >= 1 {
					overshoot := newWeight - 1
					e.endWeight = 1
					edgeCompletedThisFrame = true
					if increment > 0 {
						edgeCost = remaining * (1 - overshoot/increment)
					}
				} else {
					e.endWeight = clamp01(newWeight)
				}
			}
			if edgeCompletedThisFrame {
				if e.status == StatusOnce {
					e.status = e.nextStatus
				}
				s.activeIn = -1
			}
		}
		edgeDoneThisFrame := !wasActiveInSet || edgeCompletedThisFrame

		candidate := n.findEdge(s)
		childInfo := UpdateInfo{}
		if candidate >= 0 {
			childInfo.XFade = n.edges[candidate].xFadeTime
		}
		if err := t.updateNode(s.child, remaining, &childInfo); err != nil {
			return err
		}
		nodeDone := edgeDoneThisFrame && childInfo.AnodeDone

		consumed := remaining
		transitioned := false
		if candidate >= 0 {
			e := &n.edges[candidate]
			var fire bool
			switch e.mode {
			case ModeInstant:
				fire = edgeDoneThisFrame
			case ModeOnDone:
				fire = nodeDone
			}
			if fire {
				// A transition's cost is whatever its own incoming
				// cross-fade cost (edgeCost, 0 for a state with no
				// incoming edge or one with a zero cross-fade time): the child plays in
				// parallel with the fade and never shortens it.
				consumed = edgeCost
				end := &n.states[e.end]
				end.activeIn = candidate
				e.endWeight = 0
				t.resetNode(end.child)
				if e.status == StatusOnce {
					e.status = e.nextStatus
				}
				n.activeIdx = e.end
				if n.pathIdx < n.pathLen && n.pathEdges[n.pathIdx] == candidate {
					n.pathIdx++
				}
				transitioned = true
			}
		}

		totalConsumed += consumed
		remaining -= consumed
		if remaining < 0 {
			remaining = 0
		}
		if !transitioned || remaining <= 1e-7 {
			break
		}
	}

	if approxEqualF(totalConsumed, elapsed) {
		info.ConsumedTime = elapsed
	} else {
		info.ConsumedTime = totalConsumed
	}
	info.AnodeDone = n.states[n.activeIdx].child.Kind == KindStmExit
	return nil
}

func (t *Tree) evalStm(n *stmNode, bone int, out *clip.Transform, rm *RootMotion) error {
	s := &n.states[n.activeIdx]
	var sTr clip.Transform
	var sRM RootMotion
	var sRMPtr *RootMotion
	if rm != nil {
		sRMPtr = &sRM
	}
	if err := t.evalNode(s.child, bone, &sTr, sRMPtr); err != nil {
		return err
	}
	if s.activeIn < 0 {
		*out = sTr
		if rm != nil {
			*rm = sRM
		}
		return nil
	}

	e := &n.edges[s.activeIn]
	begin := &n.states[e.begin]
	var eTr clip.Transform
	var eRM RootMotion
	var eRMPtr *RootMotion
	if rm != nil {
		eRMPtr = &eRM
	}
	if err := t.evalNode(begin.child, bone, &eTr, eRMPtr); err != nil {
		return err
	}
	*out = eTr.Lerp(sTr, e.endWeight)
	if rm != nil {
		rm.Motion = eRM.Motion.Lerp(sRM.Motion, e.endWeight)
		rm.Distance = eRM.Distance.Lerp(sRM.Distance, e.endWeight)
	}
	return nil
}

// TravelTo requests an explicit transition to target, found by breadth
// -first search over edges whose status is not StatusOff. On success the
// found path is installed and automatic traversal follows it edge by edge
// on subsequent updates. On failure (no reachable path, or the Stm was
// created without travel enabled) the target is force-snapped: it becomes
// active immediately with no incoming edge and no cross-fade, its child is
// reset, and no error is surfaced — this is the §7 NotFound behavior.
func TravelTo(t *Tree, h NodeHandle, target int) error {
	n, err := t.stm(h)
	if err != nil {
		return err
	}
	if target < 0 || target >= len(n.states) {
		return invalidArg("TravelTo target %d out of range", target)
	}
	if target == n.activeIdx {
		n.pathIdx = 0
		n.pathLen = 0
		return nil
	}
	if !n.travelEnabled {
		t.forceSnap(n, target)
		return nil
	}

	path, ok := n.bfs(target)
	if !ok || len(path) > n.maxEdges {
		t.forceSnap(n, target)
		return nil
	}
	copy(n.pathEdges, path)
	n.pathIdx = 0
	n.pathLen = len(path)
	return nil
}

func (n *stmNode) bfs(target int) ([]int, bool) {
	for i := range n.bfsVisited {
		n.bfsVisited[i] = false
	}
	queue := n.bfsQueue[:0]
	queue = append(queue, n.activeIdx)
	n.bfsVisited[n.activeIdx] = true
	n.bfsParentEdge[n.activeIdx] = -1

	found := false
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			found = true
			break
		}
		for _, ei := range n.states[cur].outEdges {
			e := n.edges[ei]
			if e.status == StatusOff {
				continue
			}
			if n.bfsVisited[e.end] {
				continue
			}
			n.bfsVisited[e.end] = true
			n.bfsParentEdge[e.end] = ei
			queue = append(queue, e.end)
		}
	}
	if !found {
		return nil, false
	}

	var reversed []int
	cur := target
	for cur != n.activeIdx {
		ei := n.bfsParentEdge[cur]
		if ei < 0 {
			return nil, false
		}
		reversed = append(reversed, ei)
		cur = n.edges[ei].begin
	}
	path := make([]int, len(reversed))
	for i, e := range reversed {
		path[len(reversed)-1-i] = e
	}
	return path, true
}

func (t *Tree) forceSnap(n *stmNode, target int) {
	n.activeIdx = target
	n.states[target].activeIn = -1
	n.pathIdx = 0
	n.pathLen = 0
	t.resetNode(n.states[target].child)
}

// ResetStm sets stm back to state 0, clears its path plan, and resets state
// 0's child. This is the "reset state 0 and clear the path" behavior — the
// stronger of the two readings the live reference implementation exhibits.
func (t *Tree) ResetStm(h NodeHandle, n *stmNode) {
	n.activeIdx = 0
	n.pathIdx = 0
	n.pathLen = 0
	if len(n.states) > 0 {
		n.states[0].activeIn = -1
		t.resetNode(n.states[0].child)
	}
}

// ResetStmNode is the exported form of ResetStm for direct callers, mirroring
// the Tree.resetNode behavior the rest of the tree applies automatically
// when a composite node's active branch changes.
func ResetStmNode(t *Tree, h NodeHandle) error {
	n, err := t.stm(h)
	if err != nil {
		return err
	}
	t.ResetStm(h, n)
	return nil
}
