package tree

import "github.com/ashgrove-engine/animtree/clip"

// UpdateInfo carries the three values §4.3 describes passing between a node
// and its parent during update: the cross-fade window the parent wants
// (set by the caller before descending), and the node's report of whether
// it considers itself "done" and how much of the offered elapsed time it
// actually consumed.
type UpdateInfo struct {
	// XFade is the cross-fade window, in seconds, the caller wants this
	// subtree to react to. Read by Animation leaves to compute AnodeDone.
	XFade float32
	// AnodeDone reports whether the node considers itself finished enough
	// for the parent's cross-fade purposes.
	AnodeDone bool
	// ConsumedTime is how much of the elapsed time passed to update was
	// actually used. Equal to elapsed for every node except Stm, whose
	// cascades may consume less so the remainder can drive another
	// transition within the same update.
	ConsumedTime float32
}

// RootMotion is the pair of transforms an Animation leaf (and every
// composite node above it) reports for the tree's designated root bone.
type RootMotion struct {
	// Motion is the delta accumulated during this update; the caller
	// applies it to the character's world transform.
	Motion clip.Transform
	// Distance is the accumulated offset from the clip's rest pose,
	// subtracted from the bone's local output so the rig itself stays in
	// place while Motion drives the avatar.
	Distance clip.Transform
}
