// Command seed loads a small demo school into the database: two wings, six
// sections, a ten-teacher roster with subjects, a Monday-to-Friday timetable
// and the default constraint/weight settings. Intended for local development
// against an empty schema.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	var dsn string
	flag.StringVar(&dsn, "dsn", "host=localhost port=5432 user=postgres password=postgres dbname=parikshan_ops sslmode=disable", "PostgreSQL DSN")
	flag.Parse()

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	schoolID := uuid.NewString()
	if err := seed(db, schoolID); err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("seeded demo school %s\n", schoolID)
}

func seed(db *sqlx.DB, schoolID string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	wings := []struct {
		id, name string
		quota    int
		override bool
	}{
		{uuid.NewString(), "Junior Wing", 2, false},
		{uuid.NewString(), "Senior Wing", 3, true},
	}
	for _, w := range wings {
		if _, err := tx.Exec(
			`INSERT INTO wings (id, school_id, name, max_leave_per_day, priority_override, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			w.id, schoolID, w.name, w.quota, w.override); err != nil {
			return fmt.Errorf("insert wing %s: %w", w.name, err)
		}
	}

	subjects := []string{"math", "science", "english", "history", "geography"}
	sections := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		id := uuid.NewString()
		sections = append(sections, id)
		wing := wings[i%2]
		if _, err := tx.Exec(
			`INSERT INTO sections (id, school_id, wing_id, name, room, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			id, schoolID, wing.id, fmt.Sprintf("Section %c", 'A'+i), fmt.Sprintf("R-%d", 101+i)); err != nil {
			return fmt.Errorf("insert section %d: %w", i, err)
		}
	}

	teachers := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		id := uuid.NewString()
		teachers = append(teachers, id)
		wing := wings[i%2]
		role := "TEACHER"
		if i == 9 {
			role = "HEAD_OF_WING"
		}
		if _, err := tx.Exec(
			`INSERT INTO teachers (id, school_id, full_name, email, role, wing_id, cross_wing_allowed, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())`,
			id, schoolID, fmt.Sprintf("Demo Teacher %d", i+1), fmt.Sprintf("teacher%d@demo.school", i+1),
			role, wing.id, i%3 == 0); err != nil {
			return fmt.Errorf("insert teacher %d: %w", i, err)
		}
		subject := subjects[i%len(subjects)]
		if _, err := tx.Exec(
			`INSERT INTO teacher_subjects (teacher_id, subject_id, is_primary) VALUES ($1, $2, TRUE)`,
			id, subject); err != nil {
			return fmt.Errorf("insert teacher subject %d: %w", i, err)
		}
	}

	// Five teaching days, six periods, rotating teachers across sections.
	for day := 1; day <= 5; day++ {
		for period := 1; period <= 6; period++ {
			for s, sectionID := range sections {
				teacher := teachers[(day+period+s)%len(teachers)]
				subject := subjects[(period+s)%len(subjects)]
				if _, err := tx.Exec(
					`INSERT INTO timetable_slots (id, school_id, section_id, subject_id, teacher_id, day_of_week, period_index, room, created_at)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
					uuid.NewString(), schoolID, sectionID, subject, teacher, day, period, fmt.Sprintf("R-%d", 101+s)); err != nil {
					return fmt.Errorf("insert slot d%d p%d s%d: %w", day, period, s, err)
				}
			}
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO school_settings (
			school_id, max_periods_per_day, max_periods_per_week, max_consecutive_substitutions,
			max_periods_for_eligibility, avoid_back_to_back, exclude_vice_principal, exclude_principal,
			enforce_room_conflicts, weights_version, weight_base, weight_subject_match,
			weight_class_familiarity, weight_period_gap_penalty, weight_substitution_load_penalty,
			weight_overload_penalty, updated_at)
		 VALUES ($1, 6, 30, 3, 5, TRUE, TRUE, TRUE, FALSE, 1, 100, 30, 20, -15, -10, -50, NOW())`,
		schoolID); err != nil {
		return fmt.Errorf("insert school settings: %w", err)
	}

	return tx.Commit()
}
