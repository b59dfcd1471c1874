package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

func TestSubstitutionRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec("INSERT INTO substitutions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &models.Substitution{
		SchoolID:            "sch-1",
		Date:                time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PeriodIndex:         3,
		SectionID:           "sec-1",
		OriginalTeacherID:   "t-absent",
		SubstituteTeacherID: "t-sub",
		SubjectID:           "math",
		LeaveRequestID:      "l1",
		Score:               150,
		WeightsVersion:      1,
	}
	require.NoError(t, repo.Insert(context.Background(), sub))
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryInsertConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec("INSERT INTO substitutions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Insert(context.Background(), &models.Substitution{
		SchoolID:            "sch-1",
		Date:                time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PeriodIndex:         3,
		SectionID:           "sec-1",
		OriginalTeacherID:   "t-absent",
		SubstituteTeacherID: "t-sub",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryListBySchoolAndDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "school_id", "date", "period_index", "section_id", "original_teacher_id", "substitute_teacher_id", "subject_id", "leave_request_id", "score", "weights_version", "is_notified", "created_at"}).
		AddRow("s1", "sch-1", date, 2, "sec-1", "t-a", "t-b", "math", "l1", 130, 1, false, time.Now()).
		AddRow("s2", "sch-1", date, 4, "sec-2", "t-a", "t-c", "math", "l1", 110, 1, true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+substitutionColumns+" FROM substitutions WHERE school_id = $1 AND date = $2 ORDER BY period_index ASC, section_id ASC")).
		WithArgs("sch-1", date).
		WillReturnRows(rows)

	subs, err := repo.ListBySchoolAndDate(context.Background(), "sch-1", date)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "t-b", subs[0].SubstituteTeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryReplaceUnfilled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM unfilled_vacancies WHERE leave_request_id = $1")).
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO unfilled_vacancies").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	vacancies := []models.UnfilledVacancy{{
		SchoolID:          "sch-1",
		Date:              time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PeriodIndex:       5,
		SectionID:         "sec-3",
		OriginalTeacherID: "t-a",
		SubjectID:         "math",
		LeaveRequestID:    "l1",
		Reason:            "NO_ELIGIBLE_CANDIDATE",
	}}
	require.NoError(t, repo.ReplaceUnfilled(context.Background(), "l1", vacancies))
	assert.NotEmpty(t, vacancies[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryMarkNotified(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE substitutions SET is_notified = TRUE WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkNotified(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
