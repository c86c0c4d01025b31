package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcare/internal/model"
)

func TestCategoryPrefixTable(t *testing.T) {
	cases := []struct {
		code string
		want model.RoleCategory
	}{
		{"225125", model.Physician},
		{"225203", model.Physician},
		{"225310", model.Physician},
		{"223505", model.Nurse},
		{"322205", model.NursingTechnician},
		{"223605", model.Physiotherapist},
		{"251605", model.SocialWorker},
		{"223810", model.SpeechTherapist},
		{"223710", model.Nutritionist},
		{"251510", model.Psychologist},
		{"223905", model.OccupationalTherapist},
		{"223208", model.Dentist},
		{"223405", model.Pharmacist},
		{"999999", model.Other},
		{"", model.Other},
		{"  223505 ", model.Nurse},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Category(tc.code), "code %q", tc.code)
	}
}

func TestWeeklyHours(t *testing.T) {
	rec := model.ProfessionalRecord{OutpatientHours: 12.5, InpatientHours: 6.25, OtherHours: 1.25}
	assert.InDelta(t, 20.0, WeeklyHours(rec), 1e-6)

	// missing fields are zero at ingestion
	assert.InDelta(t, 0.0, WeeklyHours(model.ProfessionalRecord{}), 1e-6)
}

func TestAggregateTeamHoursFloor(t *testing.T) {
	meta := TeamMeta{ID: "t1", TypeCode: model.TeamTypeEMADI}
	records := []model.ProfessionalRecord{
		{TeamID: "t1", ProfessionalID: "p1", OccupationCode: "223505", OutpatientHours: 20.0},  // exactly on the floor: kept
		{TeamID: "t1", ProfessionalID: "p2", OccupationCode: "223505", OutpatientHours: 19.99}, // just below: dropped
		{TeamID: "t1", ProfessionalID: "p3", OccupationCode: "225125", OutpatientHours: 30, InpatientHours: 10},
	}
	report := model.NewQualityReport()
	team := AggregateTeam(meta, records, report)

	require.Contains(t, team.Skills, model.Nurse)
	assert.InDelta(t, 20.0, team.Skills[model.Nurse].Hours, 1e-6)
	assert.Equal(t, 1, team.Skills[model.Nurse].Headcount)
	assert.InDelta(t, 40.0, team.Skills[model.Physician].Hours, 1e-6)
	assert.Equal(t, 1, report.Counts[model.QualityBelowHoursFloor])
}

func TestAggregateTeamCapacityIsCategorySum(t *testing.T) {
	meta := TeamMeta{ID: "t1"}
	records := []model.ProfessionalRecord{
		{TeamID: "t1", ProfessionalID: "p1", OccupationCode: "223505", OutpatientHours: 40},
		{TeamID: "t1", ProfessionalID: "p2", OccupationCode: "322205", OutpatientHours: 30, OtherHours: 10},
		{TeamID: "t1", ProfessionalID: "p3", OccupationCode: "999999", InpatientHours: 24},
	}
	team := AggregateTeam(meta, records, nil)

	var sum float64
	for _, agg := range team.Skills {
		sum += agg.Hours
	}
	assert.InDelta(t, sum, team.CapacityHours, 1e-6)
	assert.InDelta(t, 104.0, team.CapacityHours, 1e-6)
}

func TestAggregateTeamDistinctHeadcount(t *testing.T) {
	// the same professional may hold two contracts in one category
	meta := TeamMeta{ID: "t1"}
	records := []model.ProfessionalRecord{
		{TeamID: "t1", ProfessionalID: "p1", OccupationCode: "223505", OutpatientHours: 20},
		{TeamID: "t1", ProfessionalID: "p1", OccupationCode: "223510", OutpatientHours: 20},
	}
	team := AggregateTeam(meta, records, nil)
	assert.Equal(t, 1, team.Skills[model.Nurse].Headcount)
	assert.InDelta(t, 40.0, team.Skills[model.Nurse].Hours, 1e-6)
}

func TestAggregateTeamsIdempotent(t *testing.T) {
	metas := []TeamMeta{{ID: "a", TypeCode: 22}, {ID: "b", TypeCode: 23}}
	records := []model.ProfessionalRecord{
		{TeamID: "a", ProfessionalID: "p1", OccupationCode: "223505", OutpatientHours: 40},
		{TeamID: "b", ProfessionalID: "p2", OccupationCode: "223605", OutpatientHours: 30},
	}
	first := AggregateTeams(metas, records, nil)
	second := AggregateTeams(metas, records, nil)
	assert.Equal(t, first, second)
}
