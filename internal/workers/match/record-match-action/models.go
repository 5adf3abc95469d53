// internal/workers/match/record-match-action/models.go
package recordmatchaction

// ActionRemoveSave deletes the match instead of advancing its status,
// used when a candidate un-saves a posting.
const ActionRemoveSave = "remove-save"

// Input names the match and the candidate action. Action is either a
// target status ("viewed", "saved", "applied", ...) or "remove-save".
type Input struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
	Action string `json:"action"`
}

// Output confirms the applied action.
type Output struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
	Action string `json:"action"`
	Status string `json:"status,omitempty"`
}
