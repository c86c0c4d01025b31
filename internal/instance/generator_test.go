package instance

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"adcare/internal/model"
)

func testTeams() []model.Team {
	pos := func(lat, lng float64) *model.GeoPoint { return &model.GeoPoint{Lat: lat, Lng: lng} }
	return []model.Team{
		{
			ID: "100/001", FacilityID: "100", Seq: "001", TypeCode: model.TeamTypeEMADI,
			Municipality: "3550308", Position: pos(-23.55, -46.63), CapacityHours: 250,
			Skills: map[model.RoleCategory]model.SkillAggregate{
				model.Physician: {Hours: 40, Headcount: 1},
				model.Nurse:     {Hours: 80, Headcount: 2},
			},
		},
		{
			ID: "200/001", FacilityID: "200", Seq: "001", TypeCode: model.TeamTypeEMADII,
			Municipality: "3550308", Position: pos(-23.60, -46.70), CapacityHours: 180,
			Skills: map[model.RoleCategory]model.SkillAggregate{
				model.Nurse:             {Hours: 40, Headcount: 1},
				model.NursingTechnician: {Hours: 120, Headcount: 3},
			},
		},
		{
			ID: "300/001", FacilityID: "300", Seq: "001", TypeCode: model.TeamTypeEMADI,
			Municipality: "3304557", Position: pos(-22.90, -43.20), CapacityHours: 300,
			Skills: map[model.RoleCategory]model.SkillAggregate{
				model.Physiotherapist: {Hours: 30, Headcount: 1},
			},
		},
		{
			// no facility position: must be excluded with a quality note
			ID: "400/001", FacilityID: "400", Seq: "001", TypeCode: model.TeamTypeEMAP,
			Municipality: "3550308", CapacityHours: 90,
		},
	}
}

func testSectors() []model.CensusSector {
	return []model.CensusSector{
		{
			ID: "355030801000001", Municipality: "3550308",
			PopulationTotal: 1200, Pop60to69: 100, Pop70plus: 50,
			BBox: &model.BoundingBox{MinLat: -23.58, MinLng: -46.66, MaxLat: -23.54, MaxLng: -46.60},
		},
		{
			ID: "355030801000002", Municipality: "3550308",
			PopulationTotal: 800, Pop60to69: 60, Pop70plus: 20,
			Centroid: &model.GeoPoint{Lat: -23.56, Lng: -46.64},
		},
		{
			// no elderly population: contributes nothing
			ID: "355030801000003", Municipality: "3550308",
			PopulationTotal: 400,
			Centroid:        &model.GeoPoint{Lat: -23.57, Lng: -46.65},
		},
		{
			// elderly but no geometry: skipped
			ID: "355030801000004", Municipality: "3550308",
			PopulationTotal: 500, Pop60to69: 30, Pop70plus: 10,
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Name = "test_instance"
	cfg.Patients = 25
	cfg.Region = "3550308"
	cfg.Seed = 42
	return cfg
}

func TestGenerateShape(t *testing.T) {
	report := model.NewQualityReport()
	inst, err := Generate(testTeams(), testSectors(), testConfig(), zap.NewNop(), report)
	require.NoError(t, err)

	// region filter keeps the two positioned São Paulo teams
	require.Len(t, inst.Depots, 2)
	assert.Equal(t, "d1", inst.Depots[0].ID)
	assert.Equal(t, "100/001", inst.Depots[0].TeamID)
	assert.Equal(t, "EMAD I", inst.Depots[0].TypeName)
	assert.Equal(t, "d2", inst.Depots[1].ID)

	require.Len(t, inst.Patients, 25)
	for _, p := range inst.Patients {
		assert.Contains(t, []string{"AD2", "AD3"}, p.Modality)
		assert.Greater(t, p.ServiceMin, 0)
		assert.GreaterOrEqual(t, p.VisitsPerWeek, 1)
		assert.Less(t, p.Window.StartMin, p.Window.EndMin)
		assert.GreaterOrEqual(t, p.Window.EndMin-p.Window.StartMin, p.ServiceMin)
	}

	// ids are sequential from 1
	for i, p := range inst.Patients {
		assert.Equal(t, i+1, p.ID)
	}

	n := len(inst.Depots) + len(inst.Patients)
	require.Len(t, inst.TravelMinutes, n)
	for i, row := range inst.TravelMinutes {
		require.Len(t, row, n)
		assert.Zero(t, row[i])
		for j, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Equal(t, inst.TravelMinutes[j][i], v, "asymmetry at (%d,%d)", i, j)
		}
	}

	assert.Equal(t, int64(42), inst.Metadata.Seed)
	assert.Equal(t, "moderate", inst.Metadata.Scenario)
	assert.Equal(t, 2, inst.Metadata.NumDepots)
	assert.Equal(t, 25, inst.Metadata.NumPatients)
	assert.NotEmpty(t, inst.Metadata.ID)

	assert.Equal(t, 1, report.Counts[model.QualityMissingFacility])
	assert.Equal(t, 1, report.Counts[model.QualityEmptySector])
	assert.Equal(t, 1, report.Counts[model.QualityBadGeometry])
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testConfig()
	a, err := Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)
	b, err := Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)

	assert.Equal(t, a.Depots, b.Depots)
	assert.Equal(t, a.Patients, b.Patients)
	assert.Equal(t, a.TravelMinutes, b.TravelMinutes)

	cfg.Seed = 43
	c, err := Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)
	assert.NotEqual(t, a.Patients, c.Patients)
}

func TestGenerateMaxDepots(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDepots = 1
	inst, err := Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)
	require.Len(t, inst.Depots, 1)
	assert.Equal(t, "100/001", inst.Depots[0].TeamID)
}

func TestGenerateNoDepots(t *testing.T) {
	cfg := testConfig()
	cfg.Region = "9999999"
	_, err := Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	assert.ErrorContains(t, err, "no depots")
}

func TestGenerateNoUsableSectors(t *testing.T) {
	cfg := testConfig()
	sectors := []model.CensusSector{{ID: "1", PopulationTotal: 100}}
	_, err := Generate(testTeams(), sectors, cfg, zap.NewNop(), model.NewQualityReport())
	assert.ErrorContains(t, err, "no patients")
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Patients = 0
	_, err := Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	assert.ErrorContains(t, err, "patients")

	cfg = testConfig()
	cfg.Scenario = "apocalyptic"
	_, err = Generate(testTeams(), testSectors(), cfg, zap.NewNop(), model.NewQualityReport())
	assert.ErrorContains(t, err, "scenario")
}

func TestEnsureSkillCoverage(t *testing.T) {
	depots := []model.Depot{{
		ID: "d1",
		Skills: map[model.RoleCategory]model.SkillAggregate{
			model.Nurse:     {Hours: 40, Headcount: 1},
			model.Physician: {Hours: 0, Headcount: 1}, // zero hours, not offered
		},
	}}
	patients := []model.Patient{
		{ID: 1, RequiredSkill: model.Nurse},
		{ID: 2, RequiredSkill: model.Physician},
		{ID: 3, RequiredSkill: model.SpeechTherapist},
	}
	report := model.NewQualityReport()
	rng := rand.New(rand.NewSource(7))

	reassigned := EnsureSkillCoverage(depots, patients, rng, report)
	assert.Equal(t, 2, reassigned)
	assert.Equal(t, 2, report.Counts[model.QualitySkillReassigned])
	for _, p := range patients {
		assert.Equal(t, model.Nurse, p.RequiredSkill)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	inst, err := Generate(testTeams(), testSectors(), testConfig(), zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "inst.json")
	require.NoError(t, Write(inst, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, inst.Metadata.ID, got.Metadata.ID)
	assert.Equal(t, inst.Depots, got.Depots)
	assert.Equal(t, inst.Patients, got.Patients)
	assert.Equal(t, inst.TravelMinutes, got.TravelMinutes)
}

func TestLoadRejectsCorruptMatrix(t *testing.T) {
	inst, err := Generate(testTeams(), testSectors(), testConfig(), zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)
	inst.TravelMinutes = inst.TravelMinutes[:1]

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, Write(inst, path))
	_, err = Load(path)
	assert.ErrorContains(t, err, "matrix")
}

func TestWriteCSVFiles(t *testing.T) {
	inst, err := Generate(testTeams(), testSectors(), testConfig(), zap.NewNop(), model.NewQualityReport())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, WriteCSVFiles(inst, dir))
	for _, suffix := range []string{"_depots.csv", "_patients.csv", "_matrix.csv"} {
		info, err := os.Stat(filepath.Join(dir, "test_instance"+suffix))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestBuiltinPresetsValid(t *testing.T) {
	presets := BuiltinPresets()
	require.Len(t, presets, 6)
	seen := map[int64]bool{}
	for _, cfg := range presets {
		assert.NoError(t, cfg.Validate(), cfg.Name)
		assert.False(t, seen[cfg.Seed], "duplicate seed in %s", cfg.Name)
		seen[cfg.Seed] = true
	}
}

func TestLoadPresetsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: tiny
  patients: 5
  seed: 9
- name: wide
  patients: 30
  shareAD2: 0.5
`), 0o644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 2)

	assert.Equal(t, "tiny", presets[0].Name)
	assert.Equal(t, 5, presets[0].Patients)
	assert.Equal(t, int64(9), presets[0].Seed)
	// omitted fields fall back to defaults
	assert.Equal(t, 25.0, presets[0].SpeedKmh)
	assert.Equal(t, 0.70, presets[0].ShareAD2)

	assert.Equal(t, 0.5, presets[1].ShareAD2)
}
