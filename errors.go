package rediskit

import (
	"errors"
	"fmt"
)

// ErrConflictingSetFlags is returned (via log + safe default on the soft
// surface) when a conditional write asks for both IfAbsent and IfPresent.
// At most one condition may be set; both-set is a usage error, never a
// silent pick.
var ErrConflictingSetFlags = errors.New("rediskit: IfAbsent and IfPresent are mutually exclusive")

// CoverageError reports that the cluster slot space is not fully assigned.
// Returned from first contact when ClusterOptions.CheckSlotCoverage is set.
type CoverageError struct {
	// Missing is the number of unassigned slots out of the 16384-slot space.
	Missing int
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("rediskit: cluster slot coverage incomplete: %d of %d slots unassigned",
		e.Missing, slotCount)
}
