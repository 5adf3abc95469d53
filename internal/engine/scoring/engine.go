// internal/engine/scoring/engine.go
package scoring

import (
	"fmt"
	"math"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/engine/profile"
)

// factorFunc computes one component score in [0, 100].
type factorFunc func(user, job *profile.Profile) float64

// factorOrder fixes evaluation order so results and logs are stable.
var factorOrder = []struct {
	name string
	fn   factorFunc
}{
	{FactorSkillOverlap, skillOverlap},
	{FactorCompensationFit, compensationFit},
	{FactorRemoteFit, remoteFit},
	{FactorVisaFit, visaFit},
	{FactorTimezoneFit, timezoneFit},
}

// Result carries the rounded overall score plus the per-factor
// breakdown persisted alongside it.
type Result struct {
	OverallScore    int            `json:"overallScore"`
	ComponentScores map[string]int `json:"componentScores"`
}

// Engine computes weighted match scores between user and job profiles.
// Weights come from configuration; a factor without a configured
// weight contributes nothing to the overall score but still appears in
// the component breakdown.
type Engine struct {
	weights map[string]float64
}

// NewEngine builds a scoring engine from configured factor weights.
// Weights must be non-negative and sum to something positive; the
// config loader enforces that before we get here.
func NewEngine(weights map[string]float64) (*Engine, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("scoring weights must not be empty")
	}
	total := 0.0
	for name, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("scoring weight %s is negative: %f", name, w)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("scoring weights sum to zero")
	}

	cp := make(map[string]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	return &Engine{weights: cp}, nil
}

// Score computes the match between a user and a job profile. Both
// profiles must carry an entity ID; everything else is optional and
// scored neutrally when absent. The same pair of profiles always
// yields the same result.
func (e *Engine) Score(user, job *profile.Profile) (*Result, error) {
	if user == nil || user.ID() == "" {
		return nil, errors.NewInvalidProfileError("user profile has no id")
	}
	if job == nil || job.ID() == "" {
		return nil, errors.NewInvalidProfileError("job profile has no id")
	}
	if user.Kind() != profile.KindUser {
		return nil, errors.NewInvalidProfileError(fmt.Sprintf("expected user profile, got %s", user.Kind()))
	}
	if job.Kind() != profile.KindJob {
		return nil, errors.NewInvalidProfileError(fmt.Sprintf("expected job profile, got %s", job.Kind()))
	}

	components := make(map[string]int, len(factorOrder))
	weightedSum := 0.0
	weightTotal := 0.0

	for _, f := range factorOrder {
		raw := clamp(f.fn(user, job), 0, 100)
		components[f.name] = int(math.Round(raw))

		if w, ok := e.weights[f.name]; ok && w > 0 {
			weightedSum += w * raw
			weightTotal += w
		}
	}

	overall := 0.0
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}

	return &Result{
		OverallScore:    int(math.Round(clamp(overall, 0, 100))),
		ComponentScores: components,
	}, nil
}
