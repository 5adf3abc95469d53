package provider

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
)

func newTestProvider(t *testing.T, withCache bool) (*Provider, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var (
		cache *redis.Client
		mr    *miniredis.Miniredis
	)
	if withCache {
		mr = miniredis.RunT(t)
		cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { cache.Close() })
	}

	return New(db, cache, time.Minute, logger.NewNoOpLogger()), mock, mr
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "experience_years", "skills", "work_type", "budget_min", "budget_max",
		"remote_preference", "visa_required", "visa_flexible", "timezone_offset",
		"preferred_activities", "active",
	}).AddRow("user-1", 6.0, []byte(`["Go","Postgres"]`), "freelance", 80000.0, nil,
		"fully-remote", false, true, 2.0, nil, true)
}

func TestUserFetchAndScan(t *testing.T) {
	p, mock, _ := newTestProvider(t, false)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRows())

	user, err := p.User(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", user.ID)
	require.NotNil(t, user.ExperienceYears)
	assert.Equal(t, 6.0, *user.ExperienceYears)
	assert.Equal(t, []string{"Go", "Postgres"}, user.Skills)
	assert.Nil(t, user.BudgetMax, "NULL columns stay absent")
	assert.Nil(t, user.PreferredActivities)
	assert.True(t, user.VisaFlexible)
}

func TestUserNotFound(t *testing.T) {
	p, mock, _ := newTestProvider(t, false)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := p.User(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEntityNotFound, errors.CodeOf(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestUserReadThroughCache(t *testing.T) {
	p, mock, mr := newTestProvider(t, true)

	// Only one database roundtrip is expected; the second read must be
	// served from the cache.
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRows())

	first, err := p.User(context.Background(), "user-1")
	require.NoError(t, err)

	second, err := p.User(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, mr.Exists("entity:user:user-1"))
}

func TestUserCacheInvalidation(t *testing.T) {
	p, mock, mr := newTestProvider(t, true)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRows())

	_, err := p.User(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("entity:user:user-1"))

	p.InvalidateEntity(context.Background(), "user", "user-1")
	assert.False(t, mr.Exists("entity:user:user-1"))
}

func TestUserCorruptCacheEntryFallsThrough(t *testing.T) {
	p, mock, mr := newTestProvider(t, true)

	require.NoError(t, mr.Set("entity:user:user-1", "{not json"))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRows())

	user, err := p.User(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestUserCacheOutageFallsBackToDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, cacheMock := redismock.NewClientMock()
	p := New(db, cache, time.Minute, logger.NewNoOpLogger())

	// Both the read and the write-back fail; Postgres stays
	// authoritative and the record is still returned.
	cacheMock.ExpectGet("entity:user:user-1").SetErr(context.DeadlineExceeded)
	cacheMock.Regexp().ExpectSet("entity:user:user-1", `.*`, time.Minute).
		SetErr(context.DeadlineExceeded)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(userRows())

	user, err := p.User(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.NoError(t, cacheMock.ExpectationsWereMet())
}

func TestCitiesActiveFilter(t *testing.T) {
	p, mock, _ := newTestProvider(t, false)

	rows := sqlmock.NewRows([]string{
		"id", "name", "slug", "country", "cost_of_living_index", "internet_speed_mbps",
		"safety_score", "coworking_spaces", "english_widely_spoken", "female_friendly",
		"lgbtq_friendly", "activities", "active",
	}).
		AddRow("city-1", "Lisbon", "lisbon", "Portugal", 45.0, 80.0, 9.0, 12, true, true, true, []byte(`["surfing"]`), true).
		AddRow("city-2", "Tbilisi", "tbilisi", "Georgia", nil, nil, nil, nil, false, false, false, nil, true)

	mock.ExpectQuery(`SELECT (.+) FROM cities WHERE active = true ORDER BY id`).
		WillReturnRows(rows)

	cities, err := p.Cities(context.Background(), Filter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, cities, 2)

	assert.Equal(t, "Lisbon", cities[0].Name)
	require.NotNil(t, cities[0].CostOfLivingIndex)
	assert.Equal(t, 45.0, *cities[0].CostOfLivingIndex)
	assert.Nil(t, cities[1].CostOfLivingIndex)
	assert.Nil(t, cities[1].Activities)
}

func TestJobsScan(t *testing.T) {
	p, mock, _ := newTestProvider(t, false)

	posted := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "title", "company", "salary_min", "salary_max", "remote_type",
		"visa_support", "timezone_offset", "tags", "active", "posted_at",
	}).AddRow("job-1", "Backend Engineer", "Acme", 60000.0, 90000.0, "fully-remote",
		true, 1.0, []byte(`["PHP","Laravel","Vue"]`), true, posted)

	mock.ExpectQuery(`SELECT (.+) FROM jobs ORDER BY id`).
		WillReturnRows(rows)

	jobs, err := p.Jobs(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"PHP", "Laravel", "Vue"}, jobs[0].Tags)
	assert.True(t, jobs[0].VisaSupport)
}

func TestListQueryShape(t *testing.T) {
	assert.Equal(t,
		"SELECT id FROM jobs WHERE active = true ORDER BY id LIMIT 10",
		listQuery("id", "jobs", Filter{ActiveOnly: true, Limit: 10}))
	assert.Equal(t,
		"SELECT id FROM jobs ORDER BY id",
		listQuery("id", "jobs", Filter{}))
}
