package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/engine/profile"
	"nomad-workers/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func testWeights() map[string]float64 {
	return map[string]float64{
		FactorSkillOverlap:    0.35,
		FactorCompensationFit: 0.25,
		FactorRemoteFit:       0.15,
		FactorVisaFit:         0.10,
		FactorTimezoneFit:     0.15,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(testWeights())
	require.NoError(t, err)
	return engine
}

func userProfile(t *testing.T, u models.User) *profile.Profile {
	t.Helper()
	if u.ID == "" {
		u.ID = "user-1"
	}
	p, err := profile.Normalize(u)
	require.NoError(t, err)
	return p
}

func jobProfile(t *testing.T, j models.Job) *profile.Profile {
	t.Helper()
	if j.ID == "" {
		j.ID = "job-1"
	}
	p, err := profile.Normalize(j)
	require.NoError(t, err)
	return p
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)

	_, err = NewEngine(map[string]float64{FactorSkillOverlap: -1})
	assert.Error(t, err)

	_, err = NewEngine(map[string]float64{FactorSkillOverlap: 0})
	assert.Error(t, err)
}

func TestScoreFullAlignment(t *testing.T) {
	engine := newTestEngine(t)

	user := userProfile(t, models.User{
		Skills:           []string{"Go", "Postgres"},
		BudgetMin:        floatPtr(60000),
		BudgetMax:        floatPtr(90000),
		RemotePreference: "fully-remote",
		TimezoneOffset:   floatPtr(1),
	})
	job := jobProfile(t, models.Job{
		Tags:           []string{"go", "postgres"},
		SalaryMin:      floatPtr(70000),
		SalaryMax:      floatPtr(95000),
		RemoteType:     "fully-remote",
		VisaSupport:    true,
		TimezoneOffset: floatPtr(2),
	})

	result, err := engine.Score(user, job)
	require.NoError(t, err)

	assert.Equal(t, 100, result.OverallScore)
	assert.Equal(t, map[string]int{
		FactorSkillOverlap:    100,
		FactorCompensationFit: 100,
		FactorRemoteFit:       100,
		FactorVisaFit:         100,
		FactorTimezoneFit:     100,
	}, result.ComponentScores)
}

func TestScoreStaysInRange(t *testing.T) {
	engine := newTestEngine(t)

	// Worst case on every factor the candidate's data allows.
	user := userProfile(t, models.User{
		Skills:           []string{"COBOL"},
		BudgetMin:        floatPtr(200000),
		BudgetMax:        floatPtr(250000),
		RemotePreference: "fully-remote",
		VisaRequired:     true,
		TimezoneOffset:   floatPtr(-8),
	})
	job := jobProfile(t, models.Job{
		Tags:           []string{"go", "rust"},
		SalaryMin:      floatPtr(30000),
		SalaryMax:      floatPtr(40000),
		RemoteType:     "onsite",
		TimezoneOffset: floatPtr(9),
	})

	result, err := engine.Score(user, job)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.OverallScore, 0)
	assert.LessOrEqual(t, result.OverallScore, 100)
	for name, score := range result.ComponentScores {
		assert.GreaterOrEqual(t, score, 0, name)
		assert.LessOrEqual(t, score, 100, name)
	}
	assert.Equal(t, 0, result.ComponentScores[FactorSkillOverlap])
	assert.Equal(t, 0, result.ComponentScores[FactorRemoteFit])
	assert.Equal(t, 0, result.ComponentScores[FactorVisaFit])
	assert.Equal(t, 0, result.ComponentScores[FactorTimezoneFit])
}

func TestScoreMissingDataIsNeutral(t *testing.T) {
	engine := newTestEngine(t)

	user := userProfile(t, models.User{})
	job := jobProfile(t, models.Job{Title: "Mystery Role"})

	result, err := engine.Score(user, job)
	require.NoError(t, err)

	assert.Equal(t, 50, result.ComponentScores[FactorSkillOverlap])
	assert.Equal(t, 50, result.ComponentScores[FactorCompensationFit])
	assert.Equal(t, 50, result.ComponentScores[FactorRemoteFit])
	assert.Equal(t, 50, result.ComponentScores[FactorTimezoneFit])
	// No visa requirement means the posting is usable as-is.
	assert.Equal(t, 100, result.ComponentScores[FactorVisaFit])
}

func TestScoreIsIdempotent(t *testing.T) {
	engine := newTestEngine(t)

	user := userProfile(t, models.User{
		Skills:         []string{"Go", "Kubernetes", "Terraform"},
		BudgetMin:      floatPtr(80000),
		TimezoneOffset: floatPtr(3),
	})
	job := jobProfile(t, models.Job{
		Tags:           []string{"go", "kubernetes", "aws"},
		SalaryMax:      floatPtr(110000),
		RemoteType:     "hybrid",
		TimezoneOffset: floatPtr(7),
	})

	first, err := engine.Score(user, job)
	require.NoError(t, err)
	second, err := engine.Score(user, job)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreSkillOverlapMonotonicity(t *testing.T) {
	engine := newTestEngine(t)

	job := jobProfile(t, models.Job{
		Tags:      []string{"go", "postgres", "redis", "kafka"},
		SalaryMax: floatPtr(90000),
	})

	prevOverall := -1
	prevOverlap := -1
	skills := []string{"Go", "Postgres", "Redis", "Kafka"}
	for n := 1; n <= len(skills); n++ {
		user := userProfile(t, models.User{Skills: skills[:n], BudgetMax: floatPtr(85000)})

		result, err := engine.Score(user, job)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, result.ComponentScores[FactorSkillOverlap], prevOverlap,
			"overlap score must not drop as skills are added")
		assert.GreaterOrEqual(t, result.OverallScore, prevOverall,
			"overall score must not drop as skills are added")
		prevOverlap = result.ComponentScores[FactorSkillOverlap]
		prevOverall = result.OverallScore
	}
	assert.Equal(t, 100, prevOverlap)
}

func TestScoreSalaryRaiseImprovesMatch(t *testing.T) {
	engine := newTestEngine(t)

	user := userProfile(t, models.User{
		Skills:    []string{"Go"},
		BudgetMin: floatPtr(90000),
		BudgetMax: floatPtr(120000),
	})

	underpaying := jobProfile(t, models.Job{
		Tags:      []string{"go"},
		SalaryMin: floatPtr(50000),
		SalaryMax: floatPtr(70000),
	})
	raised := jobProfile(t, models.Job{
		Tags:      []string{"go"},
		SalaryMin: floatPtr(50000),
		SalaryMax: floatPtr(95000),
	})

	before, err := engine.Score(user, underpaying)
	require.NoError(t, err)
	after, err := engine.Score(user, raised)
	require.NoError(t, err)

	assert.Equal(t, 100, after.ComponentScores[FactorCompensationFit],
		"overlapping ranges are a full fit")
	assert.Greater(t, after.ComponentScores[FactorCompensationFit],
		before.ComponentScores[FactorCompensationFit])
	assert.Greater(t, after.OverallScore, before.OverallScore)
}

func TestScoreRemoteLadder(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		jobType  string
		userPref string
		want     int
	}{
		{"fully-remote", "fully-remote", 100},
		{"hybrid", "fully-remote", 50},
		{"onsite", "fully-remote", 0},
		{"onsite", "hybrid", 50},
		{"open-plan", "hybrid", 50}, // unknown arrangement scores neutral
	}

	for _, tt := range tests {
		user := userProfile(t, models.User{RemotePreference: tt.userPref})
		job := jobProfile(t, models.Job{RemoteType: tt.jobType})

		result, err := engine.Score(user, job)
		require.NoError(t, err)
		assert.Equal(t, tt.want, result.ComponentScores[FactorRemoteFit],
			"%s vs %s", tt.jobType, tt.userPref)
	}
}

func TestScoreTimezoneDecay(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		jobTz  float64
		userTz float64
		want   int
	}{
		{0, 0, 100},
		{0, 3, 100},   // inside the tolerance window
		{0, 7.5, 50},  // halfway through the decay band
		{0, 12, 0},    // half a day apart
		{-8, 9, 0},    // capped beyond half a day
	}

	for _, tt := range tests {
		user := userProfile(t, models.User{TimezoneOffset: floatPtr(tt.userTz)})
		job := jobProfile(t, models.Job{TimezoneOffset: floatPtr(tt.jobTz)})

		result, err := engine.Score(user, job)
		require.NoError(t, err)
		assert.Equal(t, tt.want, result.ComponentScores[FactorTimezoneFit],
			"job %v vs user %v", tt.jobTz, tt.userTz)
	}
}

func TestScoreVisaFit(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name        string
		visaSupport bool
		visaNeeded  bool
		want        int
	}{
		{"support offered and needed", true, true, 100},
		{"support offered, not needed", true, false, 100},
		{"no support, not needed", false, false, 100},
		{"no support but needed", false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := userProfile(t, models.User{VisaRequired: tt.visaNeeded})
			job := jobProfile(t, models.Job{VisaSupport: tt.visaSupport})

			result, err := engine.Score(user, job)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ComponentScores[FactorVisaFit])
		})
	}
}

func TestScoreRejectsProfilesWithoutIdentity(t *testing.T) {
	engine := newTestEngine(t)

	user := userProfile(t, models.User{ID: "user-1"})
	job := jobProfile(t, models.Job{ID: "job-1"})
	blankUser, err := profile.Normalize(models.User{})
	require.NoError(t, err)
	blankJob, err := profile.Normalize(models.Job{})
	require.NoError(t, err)

	_, err = engine.Score(blankUser, job)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidProfile, errors.CodeOf(err))

	_, err = engine.Score(user, blankJob)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidProfile, errors.CodeOf(err))

	_, err = engine.Score(job, user)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidProfile, errors.CodeOf(err))
}
