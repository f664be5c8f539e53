package service

import (
	"github.com/oculab/microbio-portal/internal/core/domain"
)

// technicianLoad pairs an active technician with their pending-case count at
// decision time.
type technicianLoad struct {
	tech    *domain.User
	pending int64
}

// assignment is the allocator's decision for a new submission.
type assignment struct {
	tech *domain.User
	auto bool
}

// decideAssignment picks the technician for a new case.
//
// With no active technicians the submission is refused outright, before any
// explicit choice is considered. An explicit choice is honored
// unconditionally, with no load-balancing override. Otherwise the technician
// with the fewest pending cases wins; ties go to the first encountered
// minimum in load order (account creation order). The tie-break is
// deterministic but shifts as technicians are added, an accepted fairness
// approximation rather than a strict balancing guarantee.
//
// The decision is greedy and at submission time only: it never reassigns or
// rebalances existing cases and has no notion of capacity limits.
func decideAssignment(explicit *domain.User, loads []technicianLoad) (assignment, error) {
	if len(loads) == 0 {
		return assignment{}, domain.ErrNoTechniciansAvailable
	}

	if explicit != nil {
		return assignment{tech: explicit}, nil
	}

	best := loads[0]
	for _, l := range loads[1:] {
		if l.pending < best.pending {
			best = l
		}
	}
	return assignment{tech: best.tech, auto: true}, nil
}
