package census

import (
	"fmt"

	"adcare/internal/model"
)

// Scenario is one eligibility assumption over the elderly population.
// Rates and weights come from the home-care epidemiology literature, not
// from the registries; they are assumptions, not measurements.
type Scenario struct {
	Name            string  `yaml:"name"`
	EligibilityRate float64 `yaml:"eligibilityRate"`
	Weight60to69    float64 `yaml:"weight60to69"`
	Weight70plus    float64 `yaml:"weight70plus"`
}

// Built-in scenarios: 2-5% of the elderly need home care, with the 70+
// band about 2.5x as likely as the 60-69 band.
var builtinScenarios = map[string]Scenario{
	"conservative": {Name: "conservative", EligibilityRate: 0.02, Weight60to69: 1.0, Weight70plus: 2.5},
	"moderate":     {Name: "moderate", EligibilityRate: 0.035, Weight60to69: 1.0, Weight70plus: 2.5},
	"optimistic":   {Name: "optimistic", EligibilityRate: 0.05, Weight60to69: 1.0, Weight70plus: 2.5},
}

// ScenarioByName resolves a built-in scenario. An unknown name is a
// configuration error.
func ScenarioByName(name string) (Scenario, error) {
	s, ok := builtinScenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown demand scenario %q", name)
	}
	return s, nil
}

// Validate rejects scenario parameters that would produce nonsense
// weights; fatal for the run.
func (s Scenario) Validate() error {
	if s.EligibilityRate <= 0 || s.EligibilityRate > 1 {
		return fmt.Errorf("scenario %q: eligibility rate %.4f out of (0,1]", s.Name, s.EligibilityRate)
	}
	if s.Weight60to69 < 0 || s.Weight70plus < 0 {
		return fmt.Errorf("scenario %q: negative age weight", s.Name)
	}
	if s.Weight60to69 == 0 && s.Weight70plus == 0 {
		return fmt.Errorf("scenario %q: all age weights are zero", s.Name)
	}
	return nil
}

// WeightedDemand is the expected number of eligible patients in a sector:
// (pop60_69*w1 + pop70plus*w2) * rate.
func (s Scenario) WeightedDemand(sector model.CensusSector) float64 {
	return (float64(sector.Pop60to69)*s.Weight60to69 + float64(sector.Pop70plus)*s.Weight70plus) * s.EligibilityRate
}

// DemandRow is one line of the per-sector demand table.
type DemandRow struct {
	SectorID        string  `json:"sectorId"`
	Municipality    string  `json:"municipality"`
	PopulationTotal int     `json:"populationTotal"`
	Pop60to69       int     `json:"pop60to69"`
	Pop70plus       int     `json:"pop70plus"`
	Demand          float64 `json:"demand"`
}

// DemandTable computes the scenario demand for every sector with any
// elderly population.
func DemandTable(sectors []model.CensusSector, scenario Scenario) []DemandRow {
	rows := make([]DemandRow, 0, len(sectors))
	for _, sec := range sectors {
		if sec.ElderlyPopulation() == 0 {
			continue
		}
		rows = append(rows, DemandRow{
			SectorID:        sec.ID,
			Municipality:    sec.Municipality,
			PopulationTotal: sec.PopulationTotal,
			Pop60to69:       sec.Pop60to69,
			Pop70plus:       sec.Pop70plus,
			Demand:          scenario.WeightedDemand(sec),
		})
	}
	return rows
}
