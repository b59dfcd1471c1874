package models

import "time"

// TimetableSlot is one cell of the regular weekly timetable: a teacher
// teaching a subject to a section at (day_of_week, period_index).
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	SectionID   string    `db:"section_id" json:"section_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"` // 1=Monday .. 7=Sunday
	PeriodIndex int       `db:"period_index" json:"period_index"`
	Room        string    `db:"room" json:"room"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DayOfWeek maps a calendar date onto the timetable's 1..7 day index.
func DayOfWeek(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
