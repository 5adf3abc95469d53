package models

// User is a raw candidate profile record.
type User struct {
	ID                  string   `json:"id"`
	ExperienceYears     *float64 `json:"experienceYears,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	WorkType            string   `json:"workType,omitempty"`
	BudgetMin           *float64 `json:"budgetMin,omitempty"`
	BudgetMax           *float64 `json:"budgetMax,omitempty"`
	RemotePreference    string   `json:"remotePreference,omitempty"`
	VisaRequired        bool     `json:"visaRequired"`
	VisaFlexible        bool     `json:"visaFlexible"`
	TimezoneOffset      *float64 `json:"timezoneOffset,omitempty"`
	PreferredActivities []string `json:"preferredActivities,omitempty"`
	Active              bool     `json:"active"`
}
