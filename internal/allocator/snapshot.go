package allocator

// Snapshot is the in-run view of "who is busy when" for a single date. It is
// seeded from the regular timetable and the committed ledger, then updated as
// the allocator commits assignments, so later vacancies in the same batch see
// earlier decisions (read-your-own-writes).
type Snapshot struct {
	teachers map[string]*teacherLoad
	// slotOwner maps (period, section) to the committed substitute, seeded
	// from existing ledger rows for the date.
	slotOwner map[slotKey]string
}

type slotKey struct {
	Period  int
	Section string
}

// Commitment is one occupied period for a teacher. SectionID may be empty
// when the source only identifies the room (room-level duties); such entries
// only count as conflicts when room conflicts are enforced.
type Commitment struct {
	Period    int
	SectionID string
	Room      string
}

type teacherLoad struct {
	commitments   map[int][]Commitment
	periodsToday  int
	periodsWeek   int
	subsToday     int
	subPeriods    map[int]bool
	lastSubPeriod int
}

// TeacherState seeds a teacher's load counters for the run date.
type TeacherState struct {
	// Regular timetable commitments for the date.
	Regular []Commitment
	// RegularPeriodsWeek is the teacher's regular teaching load for the week
	// containing the date.
	RegularPeriodsWeek int
	// Substitutions already committed to the ledger for the date.
	Substitutions []Commitment
	// WeekSubstitutions counts ledger rows for the week (excluding today's,
	// which are listed above).
	WeekSubstitutions int
}

// LedgerEntry is an already-committed assignment for the run date, used to
// seed the slot ownership map.
type LedgerEntry struct {
	Period              int
	SectionID           string
	SubstituteTeacherID string
}

// NewSnapshot builds a snapshot from per-teacher seed state and the existing
// ledger rows for the date.
func NewSnapshot(states map[string]TeacherState, existing []LedgerEntry) *Snapshot {
	s := &Snapshot{
		teachers:  make(map[string]*teacherLoad, len(states)),
		slotOwner: make(map[slotKey]string, len(existing)),
	}
	for _, e := range existing {
		s.slotOwner[SlotKey(e.Period, e.SectionID)] = e.SubstituteTeacherID
	}
	for teacherID, st := range states {
		load := &teacherLoad{
			commitments: make(map[int][]Commitment),
			subPeriods:  make(map[int]bool),
		}
		for _, c := range st.Regular {
			load.commitments[c.Period] = append(load.commitments[c.Period], c)
			load.periodsToday++
		}
		load.periodsWeek = st.RegularPeriodsWeek + st.WeekSubstitutions
		for _, c := range st.Substitutions {
			load.commitments[c.Period] = append(load.commitments[c.Period], c)
			load.periodsToday++
			load.periodsWeek++
			load.subsToday++
			load.subPeriods[c.Period] = true
			if c.Period > load.lastSubPeriod {
				load.lastSubPeriod = c.Period
			}
		}
		s.teachers[teacherID] = load
	}
	return s
}

// SlotKey builds the ledger key for a (period, section) pair.
func SlotKey(period int, sectionID string) slotKey {
	return slotKey{Period: period, Section: sectionID}
}

// AssignedTo returns the substitute already committed for the slot, if any.
func (s *Snapshot) AssignedTo(period int, sectionID string) (string, bool) {
	owner, ok := s.slotOwner[SlotKey(period, sectionID)]
	return owner, ok
}

// Busy reports whether the teacher holds a section commitment at the period.
// With matchRoomOnly, room-level commitments without a section also count.
func (s *Snapshot) Busy(teacherID string, period int, matchRoomOnly bool) bool {
	load, ok := s.teachers[teacherID]
	if !ok {
		return false
	}
	for _, c := range load.commitments[period] {
		if c.SectionID != "" {
			return true
		}
		if matchRoomOnly && c.Room != "" {
			return true
		}
	}
	return false
}

// PeriodsToday returns regular plus substitution periods for the date.
func (s *Snapshot) PeriodsToday(teacherID string) int {
	if load, ok := s.teachers[teacherID]; ok {
		return load.periodsToday
	}
	return 0
}

// PeriodsWeek returns the running weekly load.
func (s *Snapshot) PeriodsWeek(teacherID string) int {
	if load, ok := s.teachers[teacherID]; ok {
		return load.periodsWeek
	}
	return 0
}

// SubstitutionsToday counts substitutions already held for the date.
func (s *Snapshot) SubstitutionsToday(teacherID string) int {
	if load, ok := s.teachers[teacherID]; ok {
		return load.subsToday
	}
	return 0
}

// LastSubstitutionPeriod returns the highest substitution period index held
// today, or 0 when none.
func (s *Snapshot) LastSubstitutionPeriod(teacherID string) int {
	if load, ok := s.teachers[teacherID]; ok {
		return load.lastSubPeriod
	}
	return 0
}

// HasSubstitutionAt reports a substitution commitment at exactly the period.
func (s *Snapshot) HasSubstitutionAt(teacherID string, period int) bool {
	if load, ok := s.teachers[teacherID]; ok {
		return load.subPeriods[period]
	}
	return false
}

// ConsecutiveRunWith returns the length of the consecutive substitution run
// the teacher would hold if assigned the given period.
func (s *Snapshot) ConsecutiveRunWith(teacherID string, period int) int {
	load, ok := s.teachers[teacherID]
	if !ok {
		return 1
	}
	run := 1
	for p := period - 1; p >= 1 && load.subPeriods[p]; p-- {
		run++
	}
	for p := period + 1; load.subPeriods[p]; p++ {
		run++
	}
	return run
}

// Commit records an assignment so subsequent vacancies in the run see it.
func (s *Snapshot) Commit(a Assignment) {
	s.slotOwner[SlotKey(a.PeriodIndex, a.SectionID)] = a.SubstituteTeacherID

	load, ok := s.teachers[a.SubstituteTeacherID]
	if !ok {
		load = &teacherLoad{
			commitments: make(map[int][]Commitment),
			subPeriods:  make(map[int]bool),
		}
		s.teachers[a.SubstituteTeacherID] = load
	}
	load.commitments[a.PeriodIndex] = append(load.commitments[a.PeriodIndex], Commitment{
		Period:    a.PeriodIndex,
		SectionID: a.SectionID,
		Room:      a.Room,
	})
	load.periodsToday++
	load.periodsWeek++
	load.subsToday++
	load.subPeriods[a.PeriodIndex] = true
	if a.PeriodIndex > load.lastSubPeriod {
		load.lastSubPeriod = a.PeriodIndex
	}
}
