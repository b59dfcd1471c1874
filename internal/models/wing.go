package models

import "time"

// Wing is an organizational unit of a school (e.g. junior/senior wing).
type Wing struct {
	ID       string `db:"id" json:"id"`
	SchoolID string `db:"school_id" json:"school_id"`
	Name     string `db:"name" json:"name"`

	// MaxLeavePerDay caps simultaneously approved leaves per calendar day.
	MaxLeavePerDay int `db:"max_leave_per_day" json:"max_leave_per_day"`

	// PriorityOverride relaxes cross-wing eligibility for vacancies in this
	// wing: candidates from other wings are considered even when their own
	// cross_wing_allowed flag is off.
	PriorityOverride bool `db:"priority_override" json:"priority_override"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Section is a class group that occupies one room within a wing.
type Section struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	WingID    string    `db:"wing_id" json:"wing_id"`
	Name      string    `db:"name" json:"name"`
	Room      string    `db:"room" json:"room"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
