package models

import "time"

// Remote work arrangement values used by job postings and user
// preferences. Postings with other values are treated as unknown.
const (
	RemoteOnsite = "onsite"
	RemoteHybrid = "hybrid"
	RemoteFully  = "fully-remote"
)

// Job is a raw job posting record.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	SalaryMin      *float64  `json:"salaryMin,omitempty"`
	SalaryMax      *float64  `json:"salaryMax,omitempty"`
	RemoteType     string    `json:"remoteType,omitempty"`
	VisaSupport    bool      `json:"visaSupport"`
	TimezoneOffset *float64  `json:"timezoneOffset,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Active         bool      `json:"active"`
	PostedAt       time.Time `json:"postedAt"`
}
