package models

import "time"

// MatchRecord is a scored pairing of one user and one job. The natural
// key is (UserID, JobID); recomputing a match refreshes the score
// columns but never touches the status lifecycle columns.
type MatchRecord struct {
	UserID          string         `json:"userId"`
	JobID           string         `json:"jobId"`
	OverallScore    int            `json:"overallScore"`
	QualityLevel    string         `json:"qualityLevel"`
	QualityTier     int            `json:"qualityTier"`
	ComponentScores map[string]int `json:"componentScores"`
	Status          Status         `json:"status"`
	StatusUpdatedAt time.Time      `json:"statusUpdatedAt"`
	AppliedAt       *time.Time     `json:"appliedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
