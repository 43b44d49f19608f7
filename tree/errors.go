package tree

import (
	"errors"
	"fmt"
	"log"
)

var logger = log.Default()

// SetLogger overrides the package-level logger used for StructuralFailure,
// CapacityExceeded, and InvalidArgument messages. Passing nil restores the
// default logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.Default()
		return
	}
	logger = l
}

var (
	// ErrCapacityExceeded is returned when the node arena or an edge/state
	// list is full. TravelTo does not return it: a path that does not fit
	// the path workspace force-snaps to the target instead.
	ErrCapacityExceeded = errors.New("tree: capacity exceeded")
	// ErrInvalidArgument covers an out-of-range clip index, an out-of-range
	// input index, or connecting a child to a parent kind that doesn't
	// accept one.
	ErrInvalidArgument = errors.New("tree: invalid argument")
	// ErrInvalidKind is returned when a handle's Kind tag does not match
	// any known node kind — a StructuralFailure per §7.
	ErrInvalidKind = errors.New("tree: unknown node kind")
	// ErrCycleDetected is returned when an Stm cascade re-enters a state
	// with the same remaining time budget within a single update.
	ErrCycleDetected = errors.New("tree: state machine cycle detected")
	// ErrNonMonotoneTime is the StructuralFailure kind for an Stm cascade
	// whose consumed time does not sum to the elapsed time it was given.
	// No update path returns it: updateStm reports such a sum through
	// UpdateInfo.ConsumedTime and does not fail.
	ErrNonMonotoneTime = errors.New("tree: non-monotone time accounting")
)

// isStructuralFailure reports whether err is one of the per-update
// StructuralFailure kinds that trigger the bind-pose fallback.
func isStructuralFailure(err error) bool {
	return errors.Is(err, ErrInvalidKind) || errors.Is(err, ErrCycleDetected) || errors.Is(err, ErrNonMonotoneTime)
}

// invalidArg logs a warning and returns an ErrInvalidArgument wrapping a
// message built from format/args, matching CapacityExceeded's
// log-then-return shape so every rejected call, not just a full arena,
// leaves a trace.
func invalidArg(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	logger.Printf("tree: rejected: %s", msg)
	return fmt.Errorf("tree: %w: %s", ErrInvalidArgument, msg)
}
