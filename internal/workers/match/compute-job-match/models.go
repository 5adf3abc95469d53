// internal/workers/match/compute-job-match/models.go
package computejobmatch

// Input carries the pair to score. Both records are resolved from the
// entity catalogue by id.
type Input struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
}

// Output mirrors the persisted match record back into the workflow.
type Output struct {
	UserID          string         `json:"userId"`
	JobID           string         `json:"jobId"`
	MatchScore      int            `json:"matchScore"`
	QualityLevel    string         `json:"qualityLevel"`
	QualityTier     int            `json:"qualityTier"`
	MatchFactors    map[string]int `json:"matchFactors"`
	Status          string         `json:"status"`
}
