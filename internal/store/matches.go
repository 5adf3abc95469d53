// internal/store/matches.go
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

// MatchStore persists scored matches keyed by (user_id, job_id).
type MatchStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

// NewMatchStore creates a match store backed by Postgres.
func NewMatchStore(db *sql.DB, log logger.Logger) *MatchStore {
	return &MatchStore{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const upsertMatchQuery = `
INSERT INTO job_matches (
	user_id, job_id, overall_score, quality_level, quality_tier,
	component_scores, status, status_updated_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, job_id) DO UPDATE SET
	overall_score    = EXCLUDED.overall_score,
	quality_level    = EXCLUDED.quality_level,
	quality_tier     = EXCLUDED.quality_tier,
	component_scores = EXCLUDED.component_scores,
	updated_at       = EXCLUDED.updated_at`

// Upsert writes a scored match in a single statement. On re-score the
// score columns are replaced and status, status_updated_at and
// applied_at are left untouched, so recomputation never rewinds a
// candidate's pipeline.
func (s *MatchStore) Upsert(ctx context.Context, rec *models.MatchRecord) error {
	if rec.UserID == "" || rec.JobID == "" {
		return errors.NewValidationError("match record requires user_id and job_id")
	}

	components, err := json.Marshal(rec.ComponentScores)
	if err != nil {
		return errors.NewValidationError("component scores are not serializable: " + err.Error())
	}

	now := s.now()
	status := rec.Status
	if status == "" {
		status = models.StatusNew
	}

	_, err = s.db.ExecContext(ctx, upsertMatchQuery,
		rec.UserID, rec.JobID, rec.OverallScore, rec.QualityLevel, rec.QualityTier,
		components, status, now, now, now,
	)
	if err != nil {
		return errors.NewQueryExecutionError("upsert match", err)
	}

	s.logger.Debug("match upserted", map[string]interface{}{
		"userId": rec.UserID,
		"jobId":  rec.JobID,
		"score":  rec.OverallScore,
	})
	return nil
}

const getMatchQuery = `
SELECT user_id, job_id, overall_score, quality_level, quality_tier,
       component_scores, status, status_updated_at, applied_at,
       created_at, updated_at
FROM job_matches
WHERE user_id = $1 AND job_id = $2`

// Get loads one match by its natural key.
func (s *MatchStore) Get(ctx context.Context, userID, jobID string) (*models.MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, getMatchQuery, userID, jobID)

	var (
		rec        models.MatchRecord
		components []byte
		status     string
		appliedAt  sql.NullTime
	)
	err := row.Scan(
		&rec.UserID, &rec.JobID, &rec.OverallScore, &rec.QualityLevel, &rec.QualityTier,
		&components, &status, &rec.StatusUpdatedAt, &appliedAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewMatchNotFoundError(userID, jobID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionError("get match", err)
	}

	rec.Status = models.Status(status)
	if appliedAt.Valid {
		t := appliedAt.Time
		rec.AppliedAt = &t
	}
	if len(components) > 0 {
		if err := json.Unmarshal(components, &rec.ComponentScores); err != nil {
			return nil, errors.NewQueryExecutionError("decode component scores", err)
		}
	}
	return &rec, nil
}

const advanceStatusQuery = `
UPDATE job_matches
SET status = $3,
    status_updated_at = $4,
    applied_at = CASE WHEN $3 = 'applied' AND applied_at IS NULL THEN $4 ELSE applied_at END,
    updated_at = $4
WHERE user_id = $1 AND job_id = $2 AND status = $5`

// AdvanceStatus moves a match through its lifecycle. The transition is
// validated against the status machine, then applied with an
// optimistic status guard so a concurrent action cannot double-apply.
// Repeating the current status is a no-op success.
func (s *MatchStore) AdvanceStatus(ctx context.Context, userID, jobID string, to models.Status) error {
	current, err := s.Get(ctx, userID, jobID)
	if err != nil {
		return err
	}

	if current.Status == to {
		return nil
	}
	if !models.IsTransitionAllowed(current.Status, to) {
		return errors.NewInvalidActionError(string(current.Status), string(to))
	}

	result, err := s.db.ExecContext(ctx, advanceStatusQuery,
		userID, jobID, string(to), s.now(), string(current.Status),
	)
	if err != nil {
		return errors.NewQueryExecutionError("advance match status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionError("advance match status", err)
	}
	if affected == 0 {
		// Lost a race with another transition; the caller can re-read
		// and decide whether its action still applies.
		return errors.NewInvalidActionError(string(current.Status), string(to))
	}

	s.logger.Info("match status advanced", map[string]interface{}{
		"userId": userID,
		"jobId":  jobID,
		"from":   string(current.Status),
		"to":     string(to),
	})
	return nil
}

const deleteMatchQuery = `DELETE FROM job_matches WHERE user_id = $1 AND job_id = $2`

// Delete removes a match outright, used when a candidate un-saves a
// posting. Deleting an absent match is not an error.
func (s *MatchStore) Delete(ctx context.Context, userID, jobID string) error {
	if _, err := s.db.ExecContext(ctx, deleteMatchQuery, userID, jobID); err != nil {
		return errors.NewQueryExecutionError("delete match", err)
	}
	return nil
}
