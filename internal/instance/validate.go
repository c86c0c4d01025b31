package instance

import (
	"fmt"
	"math/rand"
	"sort"

	"adcare/internal/model"
)

// EnsureSkillCoverage makes every patient's required skill satisfiable by
// at least one depot. Uncovered requirements are redrawn from the union
// of depot skills; the swaps are counted so the bias stays visible.
// Returns how many patients were reassigned.
func EnsureSkillCoverage(depots []model.Depot, patients []model.Patient, rng *rand.Rand, report *model.QualityReport) int {
	covered := map[model.RoleCategory]bool{}
	for _, d := range depots {
		for cat, agg := range d.Skills {
			if agg.Hours > 0 {
				covered[cat] = true
			}
		}
	}
	if len(covered) == 0 {
		return 0
	}
	options := make([]model.RoleCategory, 0, len(covered))
	for cat := range covered {
		options = append(options, cat)
	}
	sort.Slice(options, func(i, j int) bool { return options[i] < options[j] })

	reassigned := 0
	for i := range patients {
		if covered[patients[i].RequiredSkill] {
			continue
		}
		was := patients[i].RequiredSkill
		patients[i].RequiredSkill = options[rng.Intn(len(options))]
		reassigned++
		if report != nil {
			report.Add(model.QualitySkillReassigned, "", "patient %d: %s not offered by any depot, now %s", patients[i].ID, was, patients[i].RequiredSkill)
		}
	}
	return reassigned
}

// Validate checks an instance's structural invariants: matrix dimension,
// symmetry, zero diagonal, non-negative entries, and (when coverage is
// enforced) skill satisfiability.
func Validate(inst *model.Instance) error {
	n := len(inst.Depots) + len(inst.Patients)
	if len(inst.TravelMinutes) != n {
		return fmt.Errorf("matrix has %d rows, want %d", len(inst.TravelMinutes), n)
	}
	for i, row := range inst.TravelMinutes {
		if len(row) != n {
			return fmt.Errorf("matrix row %d has %d entries, want %d", i, len(row), n)
		}
		if row[i] != 0 {
			return fmt.Errorf("matrix has non-zero diagonal at %d", i)
		}
		for j, v := range row {
			if v < 0 {
				return fmt.Errorf("matrix has negative entry at (%d,%d)", i, j)
			}
			if inst.TravelMinutes[j][i] != v {
				return fmt.Errorf("matrix is asymmetric at (%d,%d)", i, j)
			}
		}
	}
	return nil
}
