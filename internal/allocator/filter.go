package allocator

import (
	"sort"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// IsExcludedFromSubstitution is the capability predicate over the closed role
// enumeration. Leadership roles are only excluded when the tenant says so.
func IsExcludedFromSubstitution(role models.TeacherRole, cs models.ConstraintSet) bool {
	switch role {
	case models.RolePrincipal:
		return cs.ExcludePrincipal
	case models.RoleVicePrincipal:
		return cs.ExcludeVicePrincipal
	default:
		return false
	}
}

// Eligible narrows the candidate pool for one vacancy. Every rule is a hard
// constraint: a failing candidate is removed, never penalized. An empty
// result is a valid outcome the caller must surface as UNFILLED.
//
// The result is deduplicated by teacher and sorted by TeacherID so downstream
// scoring sees a deterministic order.
func Eligible(v Vacancy, cs models.ConstraintSet, candidates []Candidate, snap *Snapshot) []Candidate {
	survivors := make([]Candidate, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		if seen[c.TeacherID] {
			continue
		}
		seen[c.TeacherID] = true

		if !eligible(v, cs, c, snap) {
			continue
		}
		survivors = append(survivors, c)
	}

	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].TeacherID < survivors[j].TeacherID
	})
	return survivors
}

func eligible(v Vacancy, cs models.ConstraintSet, c Candidate, snap *Snapshot) bool {
	// The absent teacher never covers their own vacancy.
	if c.TeacherID == v.OriginalTeacherID {
		return false
	}

	if IsExcludedFromSubstitution(c.Role, cs) {
		return false
	}

	// Already committed elsewhere at this period, per timetable and ledger
	// jointly. Room-level duties count only under room conflict enforcement.
	if snap.Busy(c.TeacherID, v.PeriodIndex, cs.EnforceRoomConflicts) {
		return false
	}

	// Cross-wing placement needs either the teacher's consent flag or a
	// priority override on the vacancy's wing.
	if v.WingID != "" && c.WingID != v.WingID {
		if !c.CrossWingAllowed && !v.WingPriorityOverride {
			return false
		}
	}

	periodsToday := snap.PeriodsToday(c.TeacherID)
	if periodsToday >= cs.MaxPeriodsForEligibility {
		return false
	}
	if periodsToday+1 > cs.MaxPeriodsPerTeacherPerDay {
		return false
	}
	if snap.PeriodsWeek(c.TeacherID)+1 > cs.MaxPeriodsPerTeacherPerWeek {
		return false
	}

	// Period-adjacency, not wall-clock time.
	if cs.AvoidBackToBack {
		if snap.HasSubstitutionAt(c.TeacherID, v.PeriodIndex-1) ||
			snap.HasSubstitutionAt(c.TeacherID, v.PeriodIndex+1) {
			return false
		}
	}

	if cs.MaxConsecutiveSubstitutions > 0 {
		if snap.ConsecutiveRunWith(c.TeacherID, v.PeriodIndex) > cs.MaxConsecutiveSubstitutions {
			return false
		}
	}

	return true
}
