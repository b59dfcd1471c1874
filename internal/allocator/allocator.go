package allocator

import "sort"

// Allocate runs the filter → score → rank → commit pipeline over a vacancy
// batch. Vacancies are processed in a fixed order (date, period, section)
// regardless of input ordering, and each commit lands in the snapshot before
// the next vacancy is evaluated, so a teacher taken by vacancy #1 is
// correctly excluded or load-counted for vacancy #2.
//
// Strict sequential per-vacancy commit is deliberate: substitution favors
// explainability and arrival-order fairness over a globally optimal matching,
// and keeps the run O(V × C) for school-sized inputs.
func Allocate(in Input) Result {
	vacancies := make([]Vacancy, len(in.Vacancies))
	copy(vacancies, in.Vacancies)
	sort.Slice(vacancies, func(i, j int) bool {
		a, b := vacancies[i], vacancies[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.PeriodIndex != b.PeriodIndex {
			return a.PeriodIndex < b.PeriodIndex
		}
		return a.SectionID < b.SectionID
	})

	result := Result{
		Committed: make([]Assignment, 0, len(vacancies)),
		Unfilled:  make([]Unfilled, 0),
		Skipped:   make([]Vacancy, 0),
	}

	for _, v := range vacancies {
		// Re-running a committed batch must produce zero new writes.
		if _, ok := in.Snapshot.AssignedTo(v.PeriodIndex, v.SectionID); ok {
			result.Skipped = append(result.Skipped, v)
			continue
		}

		survivors := Eligible(v, in.Constraints, in.Candidates, in.Snapshot)
		if len(survivors) == 0 {
			result.Unfilled = append(result.Unfilled, Unfilled{Vacancy: v, Reason: ReasonNoEligibleCandidate})
			continue
		}

		best := scored{Candidate: survivors[0]}
		best.Score = Score(survivors[0], v, in.Weights, in.Constraints, in.Snapshot)
		best.SubsToday = in.Snapshot.SubstitutionsToday(survivors[0].TeacherID)
		for _, c := range survivors[1:] {
			entry := scored{
				Candidate: c,
				Score:     Score(c, v, in.Weights, in.Constraints, in.Snapshot),
				SubsToday: in.Snapshot.SubstitutionsToday(c.TeacherID),
			}
			if better(entry, best) {
				best = entry
			}
		}

		assignment := Assignment{
			Vacancy:             v,
			SubstituteTeacherID: best.Candidate.TeacherID,
			Score:               best.Score,
			WeightsVersion:      in.Weights.Version,
		}
		in.Snapshot.Commit(assignment)
		result.Committed = append(result.Committed, assignment)
	}

	return result
}
