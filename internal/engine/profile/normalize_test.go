package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestNormalizeCity(t *testing.T) {
	city := &models.City{
		ID:                "city-1",
		Name:              "Lisbon",
		Country:           "Portugal",
		CostOfLivingIndex: floatPtr(45),
		InternetSpeedMbps: floatPtr(80),
		SafetyScore:       floatPtr(9),
		CoworkingSpaces:   intPtr(12),
		LGBTQFriendly:     true,
		Activities:        []string{"Surfing", "surfing", "Hiking", "  "},
	}

	p, err := Normalize(city)
	require.NoError(t, err)

	assert.Equal(t, KindCity, p.Kind())
	assert.Equal(t, "city-1", p.ID())

	cost, ok := p.Number(AttrCostOfLiving)
	require.True(t, ok)
	assert.Equal(t, 45.0, cost)

	assert.True(t, p.Bool(AttrLGBTQFriendly))
	assert.False(t, p.Bool(AttrEnglishSpoken), "absent flags default to false")

	assert.Equal(t, []string{"Surfing", "Hiking"}, p.RawList(AttrActivities),
		"lists dedupe case-insensitively keeping first casing")
	assert.Equal(t, []string{"surfing", "hiking"}, p.List(AttrActivities))
}

func TestNormalizeCityMissingNumbersStayAbsent(t *testing.T) {
	p, err := Normalize(&models.City{ID: "city-2", Name: "Tbilisi"})
	require.NoError(t, err)

	_, ok := p.Number(AttrCostOfLiving)
	assert.False(t, ok)
	_, ok = p.Number(AttrInternetSpeed)
	assert.False(t, ok)
	assert.Nil(t, p.List(AttrActivities))
}

func TestNormalizeJob(t *testing.T) {
	job := &models.Job{
		ID:          "job-1",
		Title:       "Backend Engineer",
		SalaryMin:   floatPtr(60000),
		SalaryMax:   floatPtr(90000),
		RemoteType:  "Fully-Remote",
		VisaSupport: true,
		Tags:        []string{"PHP", "Laravel", "Vue"},
	}

	p, err := Normalize(job)
	require.NoError(t, err)

	assert.Equal(t, KindJob, p.Kind())

	remote, ok := p.Str(AttrRemoteType)
	require.True(t, ok)
	assert.Equal(t, "fully-remote", remote, "string attributes are lower-cased")

	assert.Equal(t, []string{"PHP", "Laravel", "Vue"}, p.RawList(AttrSkills))
	assert.Equal(t, []string{"php", "laravel", "vue"}, p.List(AttrSkills))
}

func TestNormalizeUser(t *testing.T) {
	user := models.User{
		ID:              "user-1",
		ExperienceYears: floatPtr(6),
		Skills:          []string{"Go", "Postgres"},
		VisaRequired:    true,
		TimezoneOffset:  floatPtr(2),
	}

	p, err := Normalize(user)
	require.NoError(t, err)

	assert.Equal(t, KindUser, p.Kind())
	years, ok := p.Number(AttrExperienceYears)
	require.True(t, ok)
	assert.Equal(t, 6.0, years)
	assert.True(t, p.Bool(AttrVisaRequired))
}

func TestNormalizeRejectsUnknownEntity(t *testing.T) {
	_, err := Normalize(struct{ Name string }{Name: "nope"})
	require.Error(t, err)

	std := errors.AsStandard(err)
	require.NotNil(t, std)
	assert.Equal(t, errors.ErrCodeUnknownEntity, std.Code)
	assert.False(t, std.Retryable)
}

func TestNormalizeKind(t *testing.T) {
	kind, err := NormalizeKind("city")
	require.NoError(t, err)
	assert.Equal(t, KindCity, kind)

	_, err = NormalizeKind("company")
	require.Error(t, err)
}

func TestSnapshotIsStableAcrossRuns(t *testing.T) {
	job := &models.Job{ID: "job-2", Title: "Designer", Tags: []string{"Figma"}}

	first, err := Normalize(job)
	require.NoError(t, err)
	second, err := Normalize(job)
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.Equal(t, first.AttributeNames(), second.AttributeNames())
}
