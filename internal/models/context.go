package models

import "time"

// Context types accepted by the context store.
const (
	ContextTypeCity = "city"
	ContextTypeJob  = "job"
	ContextTypeUser = "user"
)

// AiContextRecord is the derived, machine-readable context for one
// entity. The natural key is (ContextType, ContextID); refreshing a
// context replaces every derived column in one shot.
type AiContextRecord struct {
	ContextType     string                 `json:"contextType"`
	ContextID       string                 `json:"contextId"`
	ContextData     map[string]interface{} `json:"contextData"`
	AiSummary       string                 `json:"aiSummary,omitempty"`
	AiTags          []string               `json:"aiTags"`
	AiInsights      map[string]string      `json:"aiInsights"`
	AiModelVersion  string                 `json:"aiModelVersion"`
	LastGeneratedAt time.Time              `json:"lastGeneratedAt"`
}

// IsValidContextType reports whether the given type is one the store accepts.
func IsValidContextType(t string) bool {
	return t == ContextTypeCity || t == ContextTypeJob || t == ContextTypeUser
}
