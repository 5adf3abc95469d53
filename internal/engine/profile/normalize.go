// internal/engine/profile/normalize.go
package profile

import (
	"fmt"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/models"
)

// Attribute names shared between normalization, scoring and insight
// derivation. Keeping them here avoids stringly-typed drift between
// the packages that read and write profiles.
const (
	AttrCostOfLiving    = "cost_of_living_index"
	AttrInternetSpeed   = "internet_speed_mbps"
	AttrSafetyScore     = "safety_score"
	AttrCoworkingSpaces = "coworking_spaces_count"
	AttrEnglishSpoken   = "english_widely_spoken"
	AttrFemaleFriendly  = "female_friendly"
	AttrLGBTQFriendly   = "lgbtq_friendly"
	AttrActivities      = "activities"

	AttrTitle          = "title"
	AttrSalaryMin      = "salary_min"
	AttrSalaryMax      = "salary_max"
	AttrRemoteType     = "remote_type"
	AttrVisaSupport    = "visa_support"
	AttrTimezoneOffset = "timezone_offset"
	AttrSkills         = "skills"

	AttrExperienceYears     = "experience_years"
	AttrWorkType            = "work_type"
	AttrBudgetMin           = "budget_min"
	AttrBudgetMax           = "budget_max"
	AttrRemotePreference    = "remote_preference"
	AttrVisaRequired        = "visa_required"
	AttrVisaFlexible        = "visa_flexible"
	AttrPreferredActivities = "preferred_activities"
)

// Normalize converts a raw entity record into a typed profile. The
// entity must be one of the known record types; anything else is a
// validation failure rather than a silently empty profile.
func Normalize(entity interface{}) (*Profile, error) {
	switch e := entity.(type) {
	case *models.City:
		return NormalizeCity(e), nil
	case models.City:
		return NormalizeCity(&e), nil
	case *models.Job:
		return NormalizeJob(e), nil
	case models.Job:
		return NormalizeJob(&e), nil
	case *models.User:
		return NormalizeUser(e), nil
	case models.User:
		return NormalizeUser(&e), nil
	default:
		return nil, errors.NewUnknownEntityError(fmt.Sprintf("%T", entity))
	}
}

// NormalizeKind looks up a profile kind by its context type name.
func NormalizeKind(contextType string) (Kind, error) {
	switch contextType {
	case models.ContextTypeCity:
		return KindCity, nil
	case models.ContextTypeJob:
		return KindJob, nil
	case models.ContextTypeUser:
		return KindUser, nil
	default:
		return "", errors.NewUnknownEntityError(contextType)
	}
}

// NormalizeCity builds a city profile. Missing numeric columns stay
// absent; missing flags default to false.
func NormalizeCity(c *models.City) *Profile {
	p := newProfile(KindCity, c.ID)
	p.setStr("name", c.Name)
	p.setStr("country", c.Country)
	p.setNumber(AttrCostOfLiving, c.CostOfLivingIndex)
	p.setNumber(AttrInternetSpeed, c.InternetSpeedMbps)
	p.setNumber(AttrSafetyScore, c.SafetyScore)
	if c.CoworkingSpaces != nil {
		v := float64(*c.CoworkingSpaces)
		p.setNumber(AttrCoworkingSpaces, &v)
	}
	p.setBool(AttrEnglishSpoken, c.EnglishWidelySpoken)
	p.setBool(AttrFemaleFriendly, c.FemaleFriendly)
	p.setBool(AttrLGBTQFriendly, c.LGBTQFriendly)
	p.setList(AttrActivities, c.Activities)
	return p
}

// NormalizeJob builds a job profile.
func NormalizeJob(j *models.Job) *Profile {
	p := newProfile(KindJob, j.ID)
	p.setStr(AttrTitle, j.Title)
	p.setStr("company", j.Company)
	p.setNumber(AttrSalaryMin, j.SalaryMin)
	p.setNumber(AttrSalaryMax, j.SalaryMax)
	p.setStr(AttrRemoteType, j.RemoteType)
	p.setBool(AttrVisaSupport, j.VisaSupport)
	p.setNumber(AttrTimezoneOffset, j.TimezoneOffset)
	p.setList(AttrSkills, j.Tags)
	return p
}

// NormalizeUser builds a user profile.
func NormalizeUser(u *models.User) *Profile {
	p := newProfile(KindUser, u.ID)
	p.setNumber(AttrExperienceYears, u.ExperienceYears)
	p.setList(AttrSkills, u.Skills)
	p.setStr(AttrWorkType, u.WorkType)
	p.setNumber(AttrBudgetMin, u.BudgetMin)
	p.setNumber(AttrBudgetMax, u.BudgetMax)
	p.setStr(AttrRemotePreference, u.RemotePreference)
	p.setBool(AttrVisaRequired, u.VisaRequired)
	p.setBool(AttrVisaFlexible, u.VisaFlexible)
	p.setNumber(AttrTimezoneOffset, u.TimezoneOffset)
	p.setList(AttrPreferredActivities, u.PreferredActivities)
	return p
}
