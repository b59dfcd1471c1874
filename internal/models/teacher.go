package models

import "time"

// TeacherRole is the closed set of staff roles relevant to substitution.
type TeacherRole string

const (
	RoleTeacher       TeacherRole = "TEACHER"
	RoleHeadOfWing    TeacherRole = "HEAD_OF_WING"
	RoleVicePrincipal TeacherRole = "VICE_PRINCIPAL"
	RolePrincipal     TeacherRole = "PRINCIPAL"
)

// Teacher represents a staff roster record.
type Teacher struct {
	ID               string      `db:"id" json:"id"`
	SchoolID         string      `db:"school_id" json:"school_id"`
	FullName         string      `db:"full_name" json:"full_name"`
	Email            string      `db:"email" json:"email"`
	Role             TeacherRole `db:"role" json:"role"`
	WingID           string      `db:"wing_id" json:"wing_id"`
	CrossWingAllowed bool        `db:"cross_wing_allowed" json:"cross_wing_allowed"`
	Active           bool        `db:"active" json:"active"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`

	// SubjectsTaught and PrimarySubjects are loaded from teacher_subjects;
	// primary subjects are the subset flagged is_primary.
	SubjectsTaught  []string `db:"-" json:"subjects_taught,omitempty"`
	PrimarySubjects []string `db:"-" json:"primary_subjects,omitempty"`
}

// TeacherSubject links a teacher to a subject they can cover.
type TeacherSubject struct {
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	IsPrimary bool   `db:"is_primary" json:"is_primary"`
}
