// internal/provider/scan.go
package provider

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"nomad-workers/internal/models"
)

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func listQuery(columns, table string, f Filter) string {
	query := `SELECT ` + columns + ` FROM ` + table
	if f.ActiveOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	return query
}

func scanCity(s scanner) (*models.City, error) {
	var (
		city       models.City
		cost       sql.NullFloat64
		internet   sql.NullFloat64
		safety     sql.NullFloat64
		coworking  sql.NullInt64
		activities []byte
	)
	err := s.Scan(
		&city.ID, &city.Name, &city.Slug, &city.Country, &cost, &internet,
		&safety, &coworking, &city.EnglishWidelySpoken, &city.FemaleFriendly,
		&city.LGBTQFriendly, &activities, &city.Active,
	)
	if err != nil {
		return nil, err
	}

	city.CostOfLivingIndex = nullFloat(cost)
	city.InternetSpeedMbps = nullFloat(internet)
	city.SafetyScore = nullFloat(safety)
	if coworking.Valid {
		v := int(coworking.Int64)
		city.CoworkingSpaces = &v
	}
	if err := decodeList(activities, &city.Activities); err != nil {
		return nil, err
	}
	return &city, nil
}

func scanJob(s scanner) (*models.Job, error) {
	var (
		job       models.Job
		salaryMin sql.NullFloat64
		salaryMax sql.NullFloat64
		remote    sql.NullString
		timezone  sql.NullFloat64
		tags      []byte
	)
	err := s.Scan(
		&job.ID, &job.Title, &job.Company, &salaryMin, &salaryMax, &remote,
		&job.VisaSupport, &timezone, &tags, &job.Active, &job.PostedAt,
	)
	if err != nil {
		return nil, err
	}

	job.SalaryMin = nullFloat(salaryMin)
	job.SalaryMax = nullFloat(salaryMax)
	job.RemoteType = remote.String
	job.TimezoneOffset = nullFloat(timezone)
	if err := decodeList(tags, &job.Tags); err != nil {
		return nil, err
	}
	return &job, nil
}

func scanUser(s scanner) (*models.User, error) {
	var (
		user       models.User
		experience sql.NullFloat64
		workType   sql.NullString
		budgetMin  sql.NullFloat64
		budgetMax  sql.NullFloat64
		remotePref sql.NullString
		timezone   sql.NullFloat64
		skills     []byte
		activities []byte
	)
	err := s.Scan(
		&user.ID, &experience, &skills, &workType, &budgetMin, &budgetMax,
		&remotePref, &user.VisaRequired, &user.VisaFlexible, &timezone,
		&activities, &user.Active,
	)
	if err != nil {
		return nil, err
	}

	user.ExperienceYears = nullFloat(experience)
	user.WorkType = workType.String
	user.BudgetMin = nullFloat(budgetMin)
	user.BudgetMax = nullFloat(budgetMax)
	user.RemotePreference = remotePref.String
	user.TimezoneOffset = nullFloat(timezone)
	if err := decodeList(skills, &user.Skills); err != nil {
		return nil, err
	}
	if err := decodeList(activities, &user.PreferredActivities); err != nil {
		return nil, err
	}
	return &user, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// decodeList unpacks a JSONB string array column. NULL columns stay
// nil slices.
func decodeList(raw []byte, dest *[]string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
