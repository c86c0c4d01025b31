package census

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcare/internal/model"
)

func TestModerateScenarioWeightedDemand(t *testing.T) {
	scenario, err := ScenarioByName("moderate")
	require.NoError(t, err)

	sector := model.CensusSector{PopulationTotal: 1000, Pop60to69: 100, Pop70plus: 50}
	// (100*1.0 + 50*2.5) * 0.035 = 7.875
	assert.InDelta(t, 7.875, scenario.WeightedDemand(sector), 1e-9)
}

func TestScenarioByName(t *testing.T) {
	for _, name := range []string{"conservative", "moderate", "optimistic"} {
		s, err := ScenarioByName(name)
		require.NoError(t, err)
		assert.NoError(t, s.Validate())
	}
	_, err := ScenarioByName("wild-guess")
	assert.Error(t, err)
}

func TestScenarioValidate(t *testing.T) {
	bad := Scenario{Name: "x", EligibilityRate: 0, Weight60to69: 1, Weight70plus: 1}
	assert.Error(t, bad.Validate())

	bad = Scenario{Name: "x", EligibilityRate: 0.03, Weight60to69: -1, Weight70plus: 1}
	assert.Error(t, bad.Validate())

	bad = Scenario{Name: "x", EligibilityRate: 0.03}
	assert.Error(t, bad.Validate())
}

func TestDemandTableSkipsEmptySectors(t *testing.T) {
	scenario, _ := ScenarioByName("moderate")
	sectors := []model.CensusSector{
		{ID: "a", Pop60to69: 10, Pop70plus: 5},
		{ID: "b"}, // no elderly population
	}
	rows := DemandTable(sectors, scenario)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].SectorID)
}

func TestLoadSectorsSentinelHandling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demografia.csv")
	content := "CD_SETOR;V01006;V01040;V01041\n" +
		"355030805000001;1000;100;50\n" +
		"355030805000002;800;X;40\n" + // withheld stratum folds to zero
		"310620805000001;500;30;20\n" // other municipality
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	report := model.NewQualityReport()
	sectors, err := LoadSectors(path, "3550308", report)
	require.NoError(t, err)
	require.Len(t, sectors, 2)

	assert.Equal(t, "3550308", sectors[0].Municipality)
	assert.Equal(t, 150, sectors[0].ElderlyPopulation())
	assert.Equal(t, 0, sectors[1].Pop60to69)
	assert.Equal(t, 40, sectors[1].Pop70plus)
	assert.Equal(t, 1, report.Counts["census_sentinel_zeroed"])
}

func TestLoadGeometry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geom.csv")
	content := "CD_SETOR;LAT;LNG;MIN_LAT;MIN_LNG;MAX_LAT;MAX_LNG\n" +
		"s1;-23.55;-46.63;-23.56;-46.64;-23.54;-46.62\n" +
		"s2;-23.50;-46.60;-23.40;-46.64;-23.54;-46.62\n" + // inverted bbox
		"s3;;;;;;\n" // unusable centroid
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	report := model.NewQualityReport()
	geoms, err := LoadGeometry(path, report)
	require.NoError(t, err)

	require.Contains(t, geoms, "s1")
	assert.NotNil(t, geoms["s1"].BBox)
	require.Contains(t, geoms, "s2")
	assert.Nil(t, geoms["s2"].BBox)
	assert.NotContains(t, geoms, "s3")
	assert.Equal(t, 2, report.Counts[model.QualityBadGeometry])
}
