package models

// City is a raw destination record as stored by the content site.
// Numeric pointers are nil when the attribute was never collected,
// which downstream normalization treats as "unknown" rather than zero.
type City struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Slug                string   `json:"slug"`
	Country             string   `json:"country"`
	CostOfLivingIndex   *float64 `json:"costOfLivingIndex,omitempty"`
	InternetSpeedMbps   *float64 `json:"internetSpeedMbps,omitempty"`
	SafetyScore         *float64 `json:"safetyScore,omitempty"`
	CoworkingSpaces     *int     `json:"coworkingSpaces,omitempty"`
	EnglishWidelySpoken bool     `json:"englishWidelySpoken"`
	FemaleFriendly      bool     `json:"femaleFriendly"`
	LGBTQFriendly       bool     `json:"lgbtqFriendly"`
	Activities          []string `json:"activities,omitempty"`
	Active              bool     `json:"active"`
}
