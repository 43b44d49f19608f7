package tree

// stmExitNode is a sentinel leaf inside an Stm state: it wraps the pose to
// play "on exit" and, by virtue of being the active state's child, signals
// the owning Stm's done condition to its own parent. Its update and eval
// simply forward to the wrapped node.
type stmExitNode struct {
	child NodeHandle
}

// CreateStmExit reserves a StmExit node wrapping child.
func CreateStmExit(t *Tree, child NodeHandle) (NodeHandle, error) {
	if !child.Valid() {
		return InvalidHandle, invalidArg("StmExit needs a child")
	}
	if err := t.reserve(); err != nil {
		return InvalidHandle, err
	}
	t.stmExits = append(t.stmExits, stmExitNode{child: child})
	return NodeHandle{Kind: KindStmExit, Index: int32(len(t.stmExits) - 1)}, nil
}
