// internal/engine/insight/rules.go
package insight

import (
	"nomad-workers/internal/engine/profile"
)

// Thresholds referenced by the rule tables below. Shared between tags
// and insights so the two outputs never disagree about what "budget"
// or "senior" means.
const (
	budgetCostIndex    = 50.0
	expensiveCostIndex = 80.0
	fastInternetMbps   = 50.0
	goodInternetMbps   = 25.0
	safeScore          = 7.0
	verySafeScore      = 8.0
	moderateSafeScore  = 6.0
	coworkingHubCount  = 5.0

	highSalary = 100000.0
	midSalary  = 50000.0

	midExperienceYears    = 2.0
	seniorExperienceYears = 5.0

	maxFoldedTags = 5
)

// TagRule emits a fixed tag when its predicate matches. Predicates
// must treat absent attributes as non-matching.
type TagRule struct {
	Tag  string
	When func(p *profile.Profile) bool
}

// FoldRule copies up to Limit entries of one of the entity's own list
// attributes into the tag set, casing preserved.
type FoldRule struct {
	Attr  string
	Limit int
}

// ValueRule folds a scalar string attribute's value in as a tag when
// the attribute is present.
type ValueRule struct {
	Attr string
}

// InsightRule classifies one attribute into a labelled bucket. The
// second return value is false when the attribute is absent and no
// insight should be emitted.
type InsightRule struct {
	Key      string
	Classify func(p *profile.Profile) (string, bool)
}

// RuleSet bundles every derivation rule for one entity kind.
type RuleSet struct {
	Tags     []TagRule
	Values   []ValueRule
	Folds    []FoldRule
	Insights []InsightRule
}

func numberAbove(attr string, threshold float64) func(*profile.Profile) bool {
	return func(p *profile.Profile) bool {
		v, ok := p.Number(attr)
		return ok && v > threshold
	}
}

func numberBelow(attr string, threshold float64) func(*profile.Profile) bool {
	return func(p *profile.Profile) bool {
		v, ok := p.Number(attr)
		return ok && v < threshold
	}
}

func numberBetween(attr string, low, high float64) func(*profile.Profile) bool {
	return func(p *profile.Profile) bool {
		v, ok := p.Number(attr)
		return ok && v >= low && v < high
	}
}

func numberAtLeast(attr string, threshold float64) func(*profile.Profile) bool {
	return func(p *profile.Profile) bool {
		v, ok := p.Number(attr)
		return ok && v >= threshold
	}
}

func flagSet(attr string) func(*profile.Profile) bool {
	return func(p *profile.Profile) bool { return p.Bool(attr) }
}

func strEquals(attr, want string) func(*profile.Profile) bool {
	return func(p *profile.Profile) bool {
		v, ok := p.Str(attr)
		return ok && v == want
	}
}

func strValue(attr string) func(*profile.Profile) (string, bool) {
	return func(p *profile.Profile) (string, bool) {
		return p.Str(attr)
	}
}

// classifyBand maps a numeric attribute into the label of the first
// band whose lower bound it reaches, checked high to low. The final
// band must have a zero (or negative) bound so every value lands
// somewhere.
type band struct {
	atLeast float64
	label   string
}

func classifyBands(attr string, bands []band) func(*profile.Profile) (string, bool) {
	return func(p *profile.Profile) (string, bool) {
		v, ok := p.Number(attr)
		if !ok {
			return "", false
		}
		for _, b := range bands {
			if v >= b.atLeast {
				return b.label, true
			}
		}
		return bands[len(bands)-1].label, true
	}
}

var cityRules = RuleSet{
	Tags: []TagRule{
		{Tag: "budget-friendly", When: numberBelow(profile.AttrCostOfLiving, budgetCostIndex)},
		{Tag: "expensive", When: numberAbove(profile.AttrCostOfLiving, expensiveCostIndex)},
		{Tag: "fast-internet", When: numberAbove(profile.AttrInternetSpeed, fastInternetMbps)},
		{Tag: "safe", When: numberAbove(profile.AttrSafetyScore, safeScore)},
		{Tag: "english-friendly", When: flagSet(profile.AttrEnglishSpoken)},
		{Tag: "female-friendly", When: flagSet(profile.AttrFemaleFriendly)},
		{Tag: "lgbtq-friendly", When: flagSet(profile.AttrLGBTQFriendly)},
		{Tag: "coworking-hub", When: numberAbove(profile.AttrCoworkingSpaces, coworkingHubCount)},
	},
	Insights: []InsightRule{
		{Key: "cost_category", Classify: func(p *profile.Profile) (string, bool) {
			v, ok := p.Number(profile.AttrCostOfLiving)
			if !ok {
				return "", false
			}
			switch {
			case v > expensiveCostIndex:
				return "expensive", true
			case v >= budgetCostIndex:
				return "moderate", true
			default:
				return "budget", true
			}
		}},
		{Key: "internet_category", Classify: func(p *profile.Profile) (string, bool) {
			v, ok := p.Number(profile.AttrInternetSpeed)
			if !ok {
				return "", false
			}
			switch {
			case v > fastInternetMbps:
				return "excellent", true
			case v > goodInternetMbps:
				return "good", true
			default:
				return "limited", true
			}
		}},
		{Key: "safety_category", Classify: func(p *profile.Profile) (string, bool) {
			v, ok := p.Number(profile.AttrSafetyScore)
			if !ok {
				return "", false
			}
			switch {
			case v > verySafeScore:
				return "very-safe", true
			case v > moderateSafeScore:
				return "safe", true
			default:
				return "moderate", true
			}
		}},
	},
}

var jobRules = RuleSet{
	Tags: []TagRule{
		{Tag: "visa-support", When: flagSet(profile.AttrVisaSupport)},
		{Tag: "fully-remote", When: strEquals(profile.AttrRemoteType, "fully-remote")},
		{Tag: "high-salary", When: numberAbove(profile.AttrSalaryMax, highSalary)},
	},
	Folds: []FoldRule{
		{Attr: profile.AttrSkills, Limit: maxFoldedTags},
	},
	Insights: []InsightRule{
		{Key: "salary_category", Classify: func(p *profile.Profile) (string, bool) {
			v, ok := p.Number(profile.AttrSalaryMax)
			if !ok {
				return "", false
			}
			switch {
			case v > highSalary:
				return "high", true
			case v > midSalary:
				return "mid", true
			default:
				return "entry", true
			}
		}},
		{Key: "remote_category", Classify: strValue(profile.AttrRemoteType)},
	},
}

var userRules = RuleSet{
	Tags: []TagRule{
		{Tag: "entry-level", When: numberBelow(profile.AttrExperienceYears, midExperienceYears)},
		{Tag: "mid-level", When: numberBetween(profile.AttrExperienceYears, midExperienceYears, seniorExperienceYears)},
		{Tag: "senior-level", When: numberAtLeast(profile.AttrExperienceYears, seniorExperienceYears)},
		{Tag: "visa-flexible", When: flagSet(profile.AttrVisaFlexible)},
	},
	Values: []ValueRule{
		{Attr: profile.AttrWorkType},
	},
	Folds: []FoldRule{
		{Attr: profile.AttrSkills, Limit: maxFoldedTags},
	},
	Insights: []InsightRule{
		{Key: "experience_level", Classify: classifyBands(profile.AttrExperienceYears, []band{
			{atLeast: seniorExperienceYears, label: "senior"},
			{atLeast: midExperienceYears, label: "mid"},
			{atLeast: 0, label: "entry"},
		})},
		{Key: "work_type", Classify: strValue(profile.AttrWorkType)},
	},
}

var rulesByKind = map[profile.Kind]RuleSet{
	profile.KindCity: cityRules,
	profile.KindJob:  jobRules,
	profile.KindUser: userRules,
}
