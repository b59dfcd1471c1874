package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
)

type configReaderStub struct {
	config *models.SchoolConfig
	err    error
	calls  int
}

func (s *configReaderStub) FindBySchool(ctx context.Context, schoolID string) (*models.SchoolConfig, error) {
	s.calls++
	return s.config, s.err
}

type configCacheStub struct {
	entries  map[string][]byte
	setCalls int
}

func newConfigCacheStub() *configCacheStub {
	return &configCacheStub{entries: map[string][]byte{}}
}

func (s *configCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *configCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	s.setCalls++
	return nil
}

func (s *configCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(s.entries, pattern)
	return nil
}

func validSchoolConfig() *models.SchoolConfig {
	return &models.SchoolConfig{
		SchoolID: "sch-1",
		Constraints: models.ConstraintSet{
			MaxPeriodsPerTeacherPerDay:  6,
			MaxPeriodsPerTeacherPerWeek: 30,
			MaxConsecutiveSubstitutions: 3,
			MaxPeriodsForEligibility:    5,
		},
		Weights: models.ScoringWeights{Version: 1, Base: 100},
	}
}

func TestConfigServiceCachesAfterFirstLoad(t *testing.T) {
	repo := &configReaderStub{config: validSchoolConfig()}
	cache := newConfigCacheStub()
	svc := NewConfigService(repo, cache, time.Minute, nil)

	first, err := svc.Get(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, 6, first.Constraints.MaxPeriodsPerTeacherPerDay)
	require.Equal(t, 1, repo.calls)

	second, err := svc.Get(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, first.Weights.Version, second.Weights.Version)
	assert.Equal(t, 1, repo.calls, "second read should be served from cache")
}

func TestConfigServiceMissingConfig(t *testing.T) {
	repo := &configReaderStub{err: sql.ErrNoRows}
	svc := NewConfigService(repo, nil, time.Minute, nil)

	_, err := svc.Get(context.Background(), "sch-unknown")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidConfig.Code, appErr.Code)
}

func TestConfigServiceRejectsMalformedConfig(t *testing.T) {
	cfg := validSchoolConfig()
	cfg.Constraints.MaxPeriodsPerTeacherPerDay = 0
	repo := &configReaderStub{config: cfg}
	cache := newConfigCacheStub()
	svc := NewConfigService(repo, cache, time.Minute, nil)

	_, err := svc.Get(context.Background(), "sch-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidConfig.Code, appErr.Code)
	assert.Zero(t, cache.setCalls, "invalid config must not be cached")
}

func TestConfigServiceInvalidateDropsEntry(t *testing.T) {
	repo := &configReaderStub{config: validSchoolConfig()}
	cache := newConfigCacheStub()
	svc := NewConfigService(repo, cache, time.Minute, nil)

	_, err := svc.Get(context.Background(), "sch-1")
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background(), "sch-1"))

	_, err = svc.Get(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
