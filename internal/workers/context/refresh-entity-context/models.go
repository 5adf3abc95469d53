// internal/workers/context/refresh-entity-context/models.go
package refreshentitycontext

// Input names the entity whose context should be recomputed.
type Input struct {
	ContextType string `json:"contextType"`
	ContextID   string `json:"contextId"`
}

// Output confirms the refresh.
type Output struct {
	ContextType string `json:"contextType"`
	ContextID   string `json:"contextId"`
	Refreshed   bool   `json:"refreshed"`
}
