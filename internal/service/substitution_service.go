package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VipuDevAI/parikshan-ops-api/internal/allocator"
	"github.com/VipuDevAI/parikshan-ops-api/internal/dto"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	"github.com/VipuDevAI/parikshan-ops-api/internal/repository"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/config"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
)

type substitutionStore interface {
	Insert(ctx context.Context, sub *models.Substitution) error
	ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.Substitution, error)
	ListBySchoolAndDate(ctx context.Context, schoolID string, date time.Time) ([]models.Substitution, error)
	WeeklyLoadBySchool(ctx context.Context, schoolID string, from, to time.Time) ([]repository.TeacherPeriodCount, error)
	ReplaceUnfilled(ctx context.Context, leaveRequestID string, vacancies []models.UnfilledVacancy) error
	ListUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error)
}

type timetableReader interface {
	ListBySchoolAndDay(ctx context.Context, schoolID string, dayOfWeek int) ([]models.TimetableSlot, error)
	WeeklyLoadBySchool(ctx context.Context, schoolID string) ([]repository.TeacherPeriodCount, error)
	SectionsTaughtBySchool(ctx context.Context, schoolID string) ([]repository.TeacherSectionLink, error)
}

type rosterReader interface {
	ListActiveBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error)
	ListSubjectsBySchool(ctx context.Context, schoolID string) ([]models.TeacherSubject, error)
}

type sectionLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Section, error)
}

type wingLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Wing, error)
}

type approvedLeaveReader interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error)
}

type configProvider interface {
	Get(ctx context.Context, schoolID string) (*models.SchoolConfig, error)
}

type assignmentNotifier interface {
	Enqueue(sub models.Substitution) error
}

type allocationMetrics interface {
	ObserveAllocationRun(committed int, duration time.Duration)
	RecordUnfilled(reason string)
}

// SubstitutionService orchestrates allocation runs: it derives vacancies from
// the timetable and approved leaves, assembles the ledger snapshot, invokes
// the pure allocator and commits the outcome. The same entry point serves
// automatic (post-approval) and on-demand runs.
type SubstitutionService struct {
	subs          substitutionStore
	timetable     timetableReader
	roster        rosterReader
	sections      sectionLister
	wings         wingLister
	leaves        approvedLeaveReader
	configs       configProvider
	notifications assignmentNotifier
	metrics       allocationMetrics
	cfg           config.SubstitutionConfig
	runs          *keyedMutex
	logger        *zap.Logger
}

// NewSubstitutionService builds a SubstitutionService.
func NewSubstitutionService(
	subs substitutionStore,
	timetable timetableReader,
	roster rosterReader,
	sections sectionLister,
	wings wingLister,
	leaves approvedLeaveReader,
	configs configProvider,
	notifications assignmentNotifier,
	metrics allocationMetrics,
	cfg config.SubstitutionConfig,
	logger *zap.Logger,
) *SubstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CommitRetries <= 0 {
		cfg.CommitRetries = 3
	}
	return &SubstitutionService{
		subs:          subs,
		timetable:     timetable,
		roster:        roster,
		sections:      sections,
		wings:         wings,
		leaves:        leaves,
		configs:       configs,
		notifications: notifications,
		metrics:       metrics,
		cfg:           cfg,
		runs:          newKeyedMutex(),
		logger:        logger,
	}
}

// Allocate runs the assignment engine for every approved leave of the school
// day. Runs for the same (school, date) are serialized in-process; the ledger
// unique indexes guard against other writers. Re-running a covered day is a
// no-op (committed slots are skipped).
func (s *SubstitutionService) Allocate(ctx context.Context, schoolID string, date time.Time) (*dto.AllocationSummary, error) {
	unlock := s.runs.Lock(fmt.Sprintf("%s|%s", schoolID, date.Format("2006-01-02")))
	defer unlock()

	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	start := time.Now()

	cfg, err := s.configs.Get(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	approved, err := s.leaves.List(ctx, models.LeaveFilter{
		SchoolID: schoolID,
		Date:     &date,
		Status:   models.LeaveApproved,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved leaves")
	}

	summary := &dto.AllocationSummary{
		Date:      date.Format("2006-01-02"),
		Committed: []models.Substitution{},
		Unfilled:  []models.UnfilledVacancy{},
	}
	if len(approved) == 0 {
		return summary, nil
	}

	world, err := s.loadWorld(ctx, schoolID, date)
	if err != nil {
		return nil, err
	}

	absent := make(map[string]bool, len(approved))
	for _, leave := range approved {
		absent[leave.TeacherID] = true
	}

	vacancies := s.deriveVacancies(approved, world)
	candidates := s.buildCandidates(world, absent)

	pending := vacancies
	for attempt := 0; attempt < s.cfg.CommitRetries && len(pending) > 0; attempt++ {
		snap, err := s.buildSnapshot(ctx, schoolID, date, world)
		if err != nil {
			return nil, err
		}

		res := allocator.Allocate(allocator.Input{
			Vacancies:   pending,
			Candidates:  candidates,
			Constraints: cfg.Constraints,
			Weights:     cfg.Weights,
			Snapshot:    snap,
		})

		summary.Skipped += len(res.Skipped)
		for _, u := range res.Unfilled {
			summary.Unfilled = append(summary.Unfilled, unfilledModel(schoolID, u.Vacancy, string(u.Reason)))
		}

		var conflicted []allocator.Vacancy
		for _, a := range res.Committed {
			sub := assignmentModel(schoolID, a)
			if err := s.subs.Insert(ctx, &sub); err != nil {
				if errors.Is(err, repository.ErrSlotTaken) {
					// Another writer beat us to the slot; retry the vacancy
					// on a fresh snapshot.
					conflicted = append(conflicted, a.Vacancy)
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assignment")
			}
			summary.Committed = append(summary.Committed, sub)
			if s.notifications != nil {
				if err := s.notifications.Enqueue(sub); err != nil {
					s.logger.Warn("failed to enqueue assignment notification", zap.String("substitution_id", sub.ID), zap.Error(err))
				}
			}
		}
		pending = conflicted
	}

	for _, v := range pending {
		summary.Unfilled = append(summary.Unfilled, unfilledModel(schoolID, v, string(allocator.ReasonCommitConflict)))
	}

	if err := s.persistUnfilled(ctx, approved, summary.Unfilled); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveAllocationRun(len(summary.Committed), time.Since(start))
		for _, u := range summary.Unfilled {
			s.metrics.RecordUnfilled(u.Reason)
		}
	}

	s.logger.Info("allocation run finished",
		zap.String("school_id", schoolID),
		zap.String("date", summary.Date),
		zap.Int("committed", len(summary.Committed)),
		zap.Int("unfilled", len(summary.Unfilled)),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

// GetAssignments lists committed assignments for a school day, optionally for
// one substitute teacher.
func (s *SubstitutionService) GetAssignments(ctx context.Context, schoolID, teacherID string, date time.Time) ([]models.Substitution, error) {
	if teacherID != "" {
		subs, err := s.subs.ListByTeacherAndDate(ctx, teacherID, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
		}
		return subs, nil
	}
	subs, err := s.subs.ListBySchoolAndDate(ctx, schoolID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return subs, nil
}

// GetUnfilled lists vacancies the engine could not fill for a school day.
func (s *SubstitutionService) GetUnfilled(ctx context.Context, schoolID string, date time.Time) ([]models.UnfilledVacancy, error) {
	vacancies, err := s.subs.ListUnfilled(ctx, schoolID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unfilled vacancies")
	}
	return vacancies, nil
}

// world caches the structural reads one run needs.
type world struct {
	date       time.Time
	daySlots   []models.TimetableSlot
	teachers   []models.Teacher
	subjects   []models.TeacherSubject
	taught     []repository.TeacherSectionLink
	weekLoad   map[string]int
	sectionsBy map[string]models.Section
	wingsBy    map[string]models.Wing
}

func (s *SubstitutionService) loadWorld(ctx context.Context, schoolID string, date time.Time) (*world, error) {
	day := models.DayOfWeek(date)

	slots, err := s.timetable.ListBySchoolAndDay(ctx, schoolID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	teachers, err := s.roster.ListActiveBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	subjects, err := s.roster.ListSubjectsBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher subjects")
	}
	taught, err := s.timetable.SectionsTaughtBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section links")
	}
	weekly, err := s.timetable.WeeklyLoadBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly load")
	}
	sections, err := s.sections.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	wings, err := s.wings.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wings")
	}

	w := &world{
		date:       date,
		daySlots:   slots,
		teachers:   teachers,
		subjects:   subjects,
		taught:     taught,
		weekLoad:   make(map[string]int, len(weekly)),
		sectionsBy: make(map[string]models.Section, len(sections)),
		wingsBy:    make(map[string]models.Wing, len(wings)),
	}
	for _, load := range weekly {
		w.weekLoad[load.TeacherID] = load.Periods
	}
	for _, sec := range sections {
		w.sectionsBy[sec.ID] = sec
	}
	for _, wing := range wings {
		w.wingsBy[wing.ID] = wing
	}
	return w, nil
}

func (s *SubstitutionService) deriveVacancies(approved []models.LeaveRequest, w *world) []allocator.Vacancy {
	absentLeave := make(map[string]string, len(approved))
	for _, leave := range approved {
		absentLeave[leave.TeacherID] = leave.ID
	}

	var vacancies []allocator.Vacancy
	for _, slot := range w.daySlots {
		leaveID, ok := absentLeave[slot.TeacherID]
		if !ok {
			continue
		}
		section := w.sectionsBy[slot.SectionID]
		room := slot.Room
		if room == "" {
			room = section.Room
		}
		vacancies = append(vacancies, allocator.Vacancy{
			Date:                 w.date,
			PeriodIndex:          slot.PeriodIndex,
			SectionID:            slot.SectionID,
			WingID:               section.WingID,
			Room:                 room,
			OriginalTeacherID:    slot.TeacherID,
			SubjectID:            slot.SubjectID,
			LeaveRequestID:       leaveID,
			WingPriorityOverride: w.wingsBy[section.WingID].PriorityOverride,
		})
	}
	return vacancies
}

func (s *SubstitutionService) buildCandidates(w *world, absent map[string]bool) []allocator.Candidate {
	subjectsBy := make(map[string]map[string]bool)
	primaryBy := make(map[string]map[string]bool)
	for _, link := range w.subjects {
		if subjectsBy[link.TeacherID] == nil {
			subjectsBy[link.TeacherID] = make(map[string]bool)
		}
		subjectsBy[link.TeacherID][link.SubjectID] = true
		if link.IsPrimary {
			if primaryBy[link.TeacherID] == nil {
				primaryBy[link.TeacherID] = make(map[string]bool)
			}
			primaryBy[link.TeacherID][link.SubjectID] = true
		}
	}
	taughtBy := make(map[string]map[string]bool)
	for _, link := range w.taught {
		if taughtBy[link.TeacherID] == nil {
			taughtBy[link.TeacherID] = make(map[string]bool)
		}
		taughtBy[link.TeacherID][link.SectionID] = true
	}

	candidates := make([]allocator.Candidate, 0, len(w.teachers))
	for _, t := range w.teachers {
		// Teachers absent on the run date are never candidates.
		if absent[t.ID] {
			continue
		}
		candidates = append(candidates, allocator.Candidate{
			TeacherID:        t.ID,
			Role:             t.Role,
			WingID:           t.WingID,
			CrossWingAllowed: t.CrossWingAllowed,
			SubjectsTaught:   subjectsBy[t.ID],
			PrimarySubjects:  primaryBy[t.ID],
			SectionsTaught:   taughtBy[t.ID],
		})
	}
	return candidates
}

// buildSnapshot reads the current ledger and seeds the in-run view. Called
// fresh on every commit-retry attempt so conflicts are resolved against the
// latest state.
func (s *SubstitutionService) buildSnapshot(ctx context.Context, schoolID string, date time.Time, w *world) (*allocator.Snapshot, error) {
	existing, err := s.subs.ListBySchoolAndDate(ctx, schoolID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read the assignment ledger")
	}

	weekStart := date.AddDate(0, 0, -(models.DayOfWeek(date) - 1))
	weekEnd := weekStart.AddDate(0, 0, 7)
	weekSubs, err := s.subs.WeeklyLoadBySchool(ctx, schoolID, weekStart, weekEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read weekly substitution load")
	}
	weekSubsBy := make(map[string]int, len(weekSubs))
	for _, load := range weekSubs {
		weekSubsBy[load.TeacherID] = load.Periods
	}

	states := make(map[string]allocator.TeacherState, len(w.teachers))
	todaySubs := make(map[string][]allocator.Commitment)
	ledger := make([]allocator.LedgerEntry, 0, len(existing))
	for _, sub := range existing {
		ledger = append(ledger, allocator.LedgerEntry{
			Period:              sub.PeriodIndex,
			SectionID:           sub.SectionID,
			SubstituteTeacherID: sub.SubstituteTeacherID,
		})
		todaySubs[sub.SubstituteTeacherID] = append(todaySubs[sub.SubstituteTeacherID], allocator.Commitment{
			Period:    sub.PeriodIndex,
			SectionID: sub.SectionID,
			Room:      w.sectionsBy[sub.SectionID].Room,
		})
	}

	regular := make(map[string][]allocator.Commitment)
	for _, slot := range w.daySlots {
		regular[slot.TeacherID] = append(regular[slot.TeacherID], allocator.Commitment{
			Period:    slot.PeriodIndex,
			SectionID: slot.SectionID,
			Room:      slot.Room,
		})
	}

	for _, t := range w.teachers {
		states[t.ID] = allocator.TeacherState{
			Regular:            regular[t.ID],
			RegularPeriodsWeek: w.weekLoad[t.ID],
			Substitutions:      todaySubs[t.ID],
			WeekSubstitutions:  weekSubsBy[t.ID] - len(todaySubs[t.ID]),
		}
	}

	return allocator.NewSnapshot(states, ledger), nil
}

func (s *SubstitutionService) persistUnfilled(ctx context.Context, approved []models.LeaveRequest, unfilled []models.UnfilledVacancy) error {
	byLeave := make(map[string][]models.UnfilledVacancy)
	for _, u := range unfilled {
		byLeave[u.LeaveRequestID] = append(byLeave[u.LeaveRequestID], u)
	}
	// Leaves whose vacancies were all covered still get a replace so stale
	// rows from earlier runs disappear.
	for _, leave := range approved {
		if err := s.subs.ReplaceUnfilled(ctx, leave.ID, byLeave[leave.ID]); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist unfilled vacancies")
		}
	}
	return nil
}

func assignmentModel(schoolID string, a allocator.Assignment) models.Substitution {
	return models.Substitution{
		SchoolID:            schoolID,
		Date:                a.Date,
		PeriodIndex:         a.PeriodIndex,
		SectionID:           a.SectionID,
		OriginalTeacherID:   a.OriginalTeacherID,
		SubstituteTeacherID: a.SubstituteTeacherID,
		SubjectID:           a.SubjectID,
		LeaveRequestID:      a.LeaveRequestID,
		Score:               a.Score,
		WeightsVersion:      a.WeightsVersion,
	}
}

func unfilledModel(schoolID string, v allocator.Vacancy, reason string) models.UnfilledVacancy {
	return models.UnfilledVacancy{
		SchoolID:          schoolID,
		Date:              v.Date,
		PeriodIndex:       v.PeriodIndex,
		SectionID:         v.SectionID,
		OriginalTeacherID: v.OriginalTeacherID,
		SubjectID:         v.SubjectID,
		LeaveRequestID:    v.LeaveRequestID,
		Reason:            reason,
	}
}
