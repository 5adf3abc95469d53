// internal/engine/scoring/factors.go
package scoring

import (
	"math"

	"nomad-workers/internal/engine/profile"
)

// Factor names. These double as weight keys in configuration and as
// component score keys on persisted match records.
const (
	FactorSkillOverlap    = "skill_overlap"
	FactorCompensationFit = "compensation_fit"
	FactorRemoteFit       = "remote_fit"
	FactorVisaFit         = "visa_fit"
	FactorTimezoneFit     = "timezone_fit"
)

// NeutralScore is used whenever a factor cannot be computed because
// one side lacks the data. Missing data must never read as a bad fit.
const NeutralScore = 50.0

// Timezone tolerance: within toleranceHours of each other is a perfect
// fit, then the score decays linearly to zero at maxTimezoneGap hours.
const (
	timezoneToleranceHours = 3.0
	maxTimezoneGapHours    = 12.0
)

// remoteOrder ranks work arrangements so adjacent preferences score
// partial credit instead of all-or-nothing.
var remoteOrder = map[string]int{
	"onsite":       0,
	"hybrid":       1,
	"fully-remote": 2,
}

// skillOverlap scores the fraction of the posting's required skills the
// candidate covers. Either side missing a skill list is neutral.
func skillOverlap(user, job *profile.Profile) float64 {
	required := job.List(profile.AttrSkills)
	offered := user.List(profile.AttrSkills)
	if len(required) == 0 || len(offered) == 0 {
		return NeutralScore
	}

	have := make(map[string]struct{}, len(offered))
	for _, s := range offered {
		have[s] = struct{}{}
	}

	matched := 0
	for _, s := range required {
		if _, ok := have[s]; ok {
			matched++
		}
	}
	return 100 * float64(matched) / float64(len(required))
}

// compensationFit compares the posting's salary range to the
// candidate's budget. Overlapping ranges are a perfect fit; otherwise
// the score falls with the size of the gap, in either direction.
func compensationFit(user, job *profile.Profile) float64 {
	jobLow, jobHigh, jobOK := rangeOf(job, profile.AttrSalaryMin, profile.AttrSalaryMax)
	userLow, userHigh, userOK := rangeOf(user, profile.AttrBudgetMin, profile.AttrBudgetMax)
	if !jobOK || !userOK {
		return NeutralScore
	}

	// Any overlap between the two ranges is a full fit.
	if jobHigh >= userLow && jobLow <= userHigh {
		return 100
	}

	if jobHigh < userLow {
		// Posting pays under the candidate's floor.
		if userLow <= 0 {
			return 100
		}
		return clamp(100*jobHigh/userLow, 0, 100)
	}

	// Posting starts above the candidate's ceiling. A large mismatch in
	// either direction signals a mismatched seniority band.
	if jobLow <= 0 {
		return 100
	}
	return clamp(100*userHigh/jobLow, 0, 100)
}

// rangeOf reads a [low, high] pair, tolerating a single bound. Returns
// ok=false when neither bound is present.
func rangeOf(p *profile.Profile, lowAttr, highAttr string) (float64, float64, bool) {
	low, lowOK := p.Number(lowAttr)
	high, highOK := p.Number(highAttr)
	switch {
	case lowOK && highOK:
		return low, high, true
	case lowOK:
		return low, low, true
	case highOK:
		return high, high, true
	default:
		return 0, 0, false
	}
}

// remoteFit scores distance between the posting's arrangement and the
// candidate's preference on the onsite/hybrid/fully-remote ladder.
func remoteFit(user, job *profile.Profile) float64 {
	jobType, jobOK := job.Str(profile.AttrRemoteType)
	userPref, userOK := user.Str(profile.AttrRemotePreference)
	if !jobOK || !userOK {
		return NeutralScore
	}

	jobRank, ok := remoteOrder[jobType]
	if !ok {
		return NeutralScore
	}
	userRank, ok := remoteOrder[userPref]
	if !ok {
		return NeutralScore
	}

	switch gap := abs(jobRank - userRank); gap {
	case 0:
		return 100
	case 1:
		return 50
	default:
		return 0
	}
}

// visaFit is full credit when the posting sponsors visas or the
// candidate does not need one, zero otherwise.
func visaFit(user, job *profile.Profile) float64 {
	if job.Bool(profile.AttrVisaSupport) || !user.Bool(profile.AttrVisaRequired) {
		return 100
	}
	return 0
}

// timezoneFit compares UTC offsets. Within the tolerance window the
// fit is perfect; beyond it the score decays linearly, reaching zero
// at a half-day gap.
func timezoneFit(user, job *profile.Profile) float64 {
	jobTz, jobOK := job.Number(profile.AttrTimezoneOffset)
	userTz, userOK := user.Number(profile.AttrTimezoneOffset)
	if !jobOK || !userOK {
		return NeutralScore
	}

	gap := math.Abs(jobTz - userTz)
	if gap > maxTimezoneGapHours {
		gap = maxTimezoneGapHours
	}
	if gap <= timezoneToleranceHours {
		return 100
	}
	return 100 * (maxTimezoneGapHours - gap) / (maxTimezoneGapHours - timezoneToleranceHours)
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
