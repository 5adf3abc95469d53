package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/models"
)

func newTestContextStore(t *testing.T) (*ContextStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewContextStore(db, logger.NewNoOpLogger())
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func TestContextUpsert(t *testing.T) {
	s, mock := newTestContextStore(t)

	rec := &models.AiContextRecord{
		ContextType:     models.ContextTypeCity,
		ContextID:       "city-1",
		ContextData:     map[string]interface{}{"cost_of_living_index": 45.0},
		AiTags:          []string{"budget-friendly"},
		AiInsights:      map[string]string{"cost_category": "budget"},
		AiModelVersion:  "rules-v1",
		LastGeneratedAt: fixedNow,
	}

	data, _ := json.Marshal(rec.ContextData)
	tags, _ := json.Marshal(rec.AiTags)
	insights, _ := json.Marshal(rec.AiInsights)

	mock.ExpectExec("INSERT INTO ai_contexts").
		WithArgs("city", "city-1", data, tags, insights, "rules-v1", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextUpsertRejectsUnknownType(t *testing.T) {
	s, _ := newTestContextStore(t)

	err := s.Upsert(context.Background(), &models.AiContextRecord{
		ContextType: "company",
		ContextID:   "c-1",
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownEntity, errors.CodeOf(err))
}

func TestContextUpsertNormalizesNilCollections(t *testing.T) {
	s, mock := newTestContextStore(t)

	mock.ExpectExec("INSERT INTO ai_contexts").
		WithArgs("user", "user-1", []byte("null"), []byte("[]"), []byte("{}"),
			"rules-v1", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Upsert(context.Background(), &models.AiContextRecord{
		ContextType:    models.ContextTypeUser,
		ContextID:      "user-1",
		AiModelVersion: "rules-v1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContextGet(t *testing.T) {
	s, mock := newTestContextStore(t)

	data, _ := json.Marshal(map[string]interface{}{"salary_max": 120000.0})
	tags, _ := json.Marshal([]string{"high-salary"})
	insights, _ := json.Marshal(map[string]string{"salary_category": "high"})

	rows := sqlmock.NewRows([]string{
		"context_type", "context_id", "context_data", "ai_summary", "ai_tags",
		"ai_insights", "ai_model_version", "last_generated_at",
	}).AddRow("job", "job-1", data, "A well paid role.", tags, insights, "rules-v1", fixedNow)

	mock.ExpectQuery("SELECT (.+) FROM ai_contexts").
		WithArgs("job", "job-1").
		WillReturnRows(rows)

	rec, err := s.Get(context.Background(), "job", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "A well paid role.", rec.AiSummary)
	assert.Equal(t, []string{"high-salary"}, rec.AiTags)
	assert.Equal(t, map[string]string{"salary_category": "high"}, rec.AiInsights)
	assert.Equal(t, 120000.0, rec.ContextData["salary_max"])
}

func TestContextGetNotFound(t *testing.T) {
	s, mock := newTestContextStore(t)

	mock.ExpectQuery("SELECT (.+) FROM ai_contexts").
		WithArgs("city", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"context_type"}))

	_, err := s.Get(context.Background(), "city", "nope")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEntityNotFound, errors.CodeOf(err))
}

func TestSetSummary(t *testing.T) {
	s, mock := newTestContextStore(t)

	mock.ExpectExec("UPDATE ai_contexts").
		WithArgs("city", "city-1", "Sunny and affordable.", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetSummary(context.Background(), "city", "city-1", "Sunny and affordable."))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSummaryMissingContext(t *testing.T) {
	s, mock := newTestContextStore(t)

	mock.ExpectExec("UPDATE ai_contexts").
		WithArgs("city", "missing", "text", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetSummary(context.Background(), "city", "missing", "text")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEntityNotFound, errors.CodeOf(err))
}
