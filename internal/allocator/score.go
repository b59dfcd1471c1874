package allocator

import "github.com/VipuDevAI/parikshan-ops-api/internal/models"

// Score computes the candidate's signed integer score for a vacancy. Every
// term is computed independently and summed: a heavily penalized candidate
// stays comparably ranked, since discarding is the filter's job.
// The formula never assumes penalty weights are negative, it only sums what
// the tenant configured.
func Score(c Candidate, v Vacancy, w models.ScoringWeights, cs models.ConstraintSet, snap *Snapshot) int {
	score := w.Base

	if c.PrimarySubjects[v.SubjectID] {
		score += w.SubjectMatch
	}
	if c.SectionsTaught[v.SectionID] {
		score += w.ClassFamiliarity
	}

	score += w.PeriodGapPenaltyPerGap * periodDistance(snap.LastSubstitutionPeriod(c.TeacherID), v.PeriodIndex)
	score += w.SubstitutionLoadPenalty * snap.SubstitutionsToday(c.TeacherID)

	if snap.PeriodsToday(c.TeacherID) >= cs.MaxPeriodsPerTeacherPerDay-1 {
		score += w.OverloadPenalty
	}

	return score
}

// periodDistance is 0 for a teacher with no substitution yet today; a first
// assignment carries no gap penalty.
func periodDistance(last, period int) int {
	if last == 0 {
		return 0
	}
	if period > last {
		return period - last
	}
	return last - period
}

// scored pairs a candidate with its computed score for ranking.
type scored struct {
	Candidate Candidate
	Score     int
	SubsToday int
}

// better reports whether a outranks b: higher score, then fewer substitutions
// already held today, then lower teacher ID. The final key makes the choice
// deterministic and auditable.
func better(a, b scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.SubsToday != b.SubsToday {
		return a.SubsToday < b.SubsToday
	}
	return a.Candidate.TeacherID < b.Candidate.TeacherID
}
