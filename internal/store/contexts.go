// internal/store/contexts.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/models"
)

// ContextStore persists derived entity contexts keyed by
// (context_type, context_id).
type ContextStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

// NewContextStore creates a context store backed by Postgres.
func NewContextStore(db *sql.DB, log logger.Logger) *ContextStore {
	return &ContextStore{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const upsertContextQuery = `
INSERT INTO ai_contexts (
	context_type, context_id, context_data, ai_tags, ai_insights,
	ai_model_version, last_generated_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (context_type, context_id) DO UPDATE SET
	context_data      = EXCLUDED.context_data,
	ai_tags           = EXCLUDED.ai_tags,
	ai_insights       = EXCLUDED.ai_insights,
	ai_model_version  = EXCLUDED.ai_model_version,
	last_generated_at = EXCLUDED.last_generated_at,
	updated_at        = EXCLUDED.updated_at`

// Upsert replaces every derived column for one entity in a single
// statement, so a refresh is all-or-nothing. The prose summary column
// is deliberately not written here; see SetSummary.
func (s *ContextStore) Upsert(ctx context.Context, rec *models.AiContextRecord) error {
	if !models.IsValidContextType(rec.ContextType) {
		return errors.NewUnknownEntityError(rec.ContextType)
	}
	if rec.ContextID == "" {
		return errors.NewValidationError("context record requires context_id")
	}

	data, err := json.Marshal(rec.ContextData)
	if err != nil {
		return errors.NewValidationError("context data is not serializable: " + err.Error())
	}
	tags, err := json.Marshal(emptyIfNilList(rec.AiTags))
	if err != nil {
		return errors.NewValidationError("tags are not serializable: " + err.Error())
	}
	insights, err := json.Marshal(emptyIfNilMap(rec.AiInsights))
	if err != nil {
		return errors.NewValidationError("insights are not serializable: " + err.Error())
	}

	generatedAt := rec.LastGeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.now()
	}

	_, err = s.db.ExecContext(ctx, upsertContextQuery,
		rec.ContextType, rec.ContextID, data, tags, insights,
		rec.AiModelVersion, generatedAt, s.now(),
	)
	if err != nil {
		return errors.NewQueryExecutionError("upsert context", err)
	}

	s.logger.Debug("context upserted", map[string]interface{}{
		"contextType": rec.ContextType,
		"contextId":   rec.ContextID,
		"tags":        len(rec.AiTags),
	})
	return nil
}

const getContextQuery = `
SELECT context_type, context_id, context_data, ai_summary, ai_tags,
       ai_insights, ai_model_version, last_generated_at
FROM ai_contexts
WHERE context_type = $1 AND context_id = $2`

// Get loads one derived context by its natural key.
func (s *ContextStore) Get(ctx context.Context, contextType, contextID string) (*models.AiContextRecord, error) {
	row := s.db.QueryRowContext(ctx, getContextQuery, contextType, contextID)

	var (
		rec      models.AiContextRecord
		data     []byte
		summary  sql.NullString
		tags     []byte
		insights []byte
	)
	err := row.Scan(
		&rec.ContextType, &rec.ContextID, &data, &summary, &tags,
		&insights, &rec.AiModelVersion, &rec.LastGeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError(contextType, contextID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionError("get context", err)
	}

	rec.AiSummary = summary.String
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.ContextData); err != nil {
			return nil, errors.NewQueryExecutionError("decode context data", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &rec.AiTags); err != nil {
			return nil, errors.NewQueryExecutionError("decode tags", err)
		}
	}
	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &rec.AiInsights); err != nil {
			return nil, errors.NewQueryExecutionError("decode insights", err)
		}
	}
	return &rec, nil
}

const setSummaryQuery = `
UPDATE ai_contexts
SET ai_summary = $3, updated_at = $4
WHERE context_type = $1 AND context_id = $2`

// SetSummary stores the prose summary produced by the external
// narrative generator. It only touches the summary column, so a
// summary landing mid-refresh cannot clobber freshly derived data.
func (s *ContextStore) SetSummary(ctx context.Context, contextType, contextID, summary string) error {
	result, err := s.db.ExecContext(ctx, setSummaryQuery, contextType, contextID, summary, s.now())
	if err != nil {
		return errors.NewQueryExecutionError("set context summary", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionError("set context summary", err)
	}
	if affected == 0 {
		return errors.NewEntityNotFoundError(contextType, contextID)
	}
	return nil
}

func emptyIfNilList(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func emptyIfNilMap(v map[string]string) map[string]string {
	if v == nil {
		return map[string]string{}
	}
	return v
}
