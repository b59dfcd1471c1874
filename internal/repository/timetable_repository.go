package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// TeacherPeriodCount aggregates a teacher's period count.
type TeacherPeriodCount struct {
	TeacherID string `db:"teacher_id"`
	Periods   int    `db:"periods"`
}

// TeacherSectionLink records that a teacher regularly teaches a section.
type TeacherSectionLink struct {
	TeacherID string `db:"teacher_id"`
	SectionID string `db:"section_id"`
}

// TimetableRepository reads the regular weekly timetable.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListBySchoolAndDay returns every regular slot for a school on a weekday.
func (r *TimetableRepository) ListBySchoolAndDay(ctx context.Context, schoolID string, dayOfWeek int) ([]models.TimetableSlot, error) {
	const query = `SELECT id, school_id, section_id, subject_id, teacher_id, day_of_week, period_index, room, created_at
FROM timetable_slots
WHERE school_id = $1 AND day_of_week = $2
ORDER BY period_index ASC, section_id ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list timetable by school: %w", err)
	}
	return slots, nil
}

// WeeklyLoadBySchool returns each teacher's regular weekly period count.
func (r *TimetableRepository) WeeklyLoadBySchool(ctx context.Context, schoolID string) ([]TeacherPeriodCount, error) {
	const query = `SELECT teacher_id, COUNT(*) AS periods
FROM timetable_slots
WHERE school_id = $1
GROUP BY teacher_id`
	var counts []TeacherPeriodCount
	if err := r.db.SelectContext(ctx, &counts, query, schoolID); err != nil {
		return nil, fmt.Errorf("weekly timetable load: %w", err)
	}
	return counts, nil
}

// SectionsTaughtBySchool returns distinct teacher-section pairs, used for the
// class-familiarity scoring term.
func (r *TimetableRepository) SectionsTaughtBySchool(ctx context.Context, schoolID string) ([]TeacherSectionLink, error) {
	const query = `SELECT DISTINCT teacher_id, section_id
FROM timetable_slots
WHERE school_id = $1`
	var links []TeacherSectionLink
	if err := r.db.SelectContext(ctx, &links, query, schoolID); err != nil {
		return nil, fmt.Errorf("sections taught: %w", err)
	}
	return links, nil
}
