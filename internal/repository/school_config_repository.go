package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// SchoolConfigRepository reads per-tenant constraint sets and scoring weights.
type SchoolConfigRepository struct {
	db *sqlx.DB
}

// NewSchoolConfigRepository constructs the repository.
func NewSchoolConfigRepository(db *sqlx.DB) *SchoolConfigRepository {
	return &SchoolConfigRepository{db: db}
}

type schoolSettingsRow struct {
	SchoolID string `db:"school_id"`
	models.ConstraintSet
	models.ScoringWeights
	UpdatedAt time.Time `db:"updated_at"`
}

// FindBySchool loads the settings row for a school. Returns sql.ErrNoRows
// when the tenant has no configuration yet.
func (r *SchoolConfigRepository) FindBySchool(ctx context.Context, schoolID string) (*models.SchoolConfig, error) {
	const query = `SELECT school_id,
	max_periods_per_day, max_periods_per_week, max_consecutive_substitutions, max_periods_for_eligibility,
	avoid_back_to_back, exclude_vice_principal, exclude_principal, enforce_room_conflicts,
	weights_version, weight_base, weight_subject_match, weight_class_familiarity,
	weight_period_gap_penalty, weight_substitution_load_penalty, weight_overload_penalty,
	updated_at
FROM school_settings WHERE school_id = $1`
	var row schoolSettingsRow
	if err := r.db.GetContext(ctx, &row, query, schoolID); err != nil {
		return nil, err
	}
	return &models.SchoolConfig{
		SchoolID:    row.SchoolID,
		Constraints: row.ConstraintSet,
		Weights:     row.ScoringWeights,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
