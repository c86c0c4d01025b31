package instance

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adcare/internal/census"
	"adcare/internal/model"
)

// Generate produces one self-contained optimization instance from real
// team aggregates and census sectors. Depots, patients, and the matrix
// are fully determined by the config and seed; only the metadata id and
// timestamp vary between runs.
func Generate(teams []model.Team, sectors []model.CensusSector, cfg Config, log *zap.Logger, report *model.QualityReport) (*model.Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generation config: %w", err)
	}
	scenario, err := census.ScenarioByName(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	depots := SelectSupplySide(teams, cfg, rng, report)
	if len(depots) == 0 {
		return nil, fmt.Errorf("no depots available in region %q", cfg.Region)
	}
	log.Info("selected supply side", zap.Int("depots", len(depots)), zap.String("region", cfg.Region))

	patients := SamplePatients(sectors, cfg, scenario, rng, report)
	if len(patients) == 0 {
		return nil, fmt.Errorf("no patients could be sampled: no usable census sectors")
	}
	log.Info("sampled patients",
		zap.Int("patients", len(patients)),
		zap.String("scenario", scenario.Name),
		zap.Int("sectorsSkipped", report.Counts[model.QualityEmptySector]+report.Counts[model.QualityBadGeometry]))

	if cfg.EnforceSkillCoverage {
		if swapped := EnsureSkillCoverage(depots, patients, rng, report); swapped > 0 {
			log.Warn("reassigned uncovered skill requirements", zap.Int("patients", swapped))
		}
	}

	matrix := BuildMatrix(depots, patients, cfg.SpeedKmh)

	inst := &model.Instance{
		Metadata: model.InstanceMetadata{
			ID:          uuid.NewString(),
			Name:        cfg.Name,
			GeneratedAt: time.Now().UTC(),
			Seed:        cfg.Seed,
			Region:      cfg.Region,
			Scenario:    scenario.Name,
			SpeedKmh:    cfg.SpeedKmh,
			NumDepots:   len(depots),
			NumPatients: len(patients),
			Sources: map[string]string{
				"teams":      "CNES/DATASUS",
				"demography": "IBGE Censo 2022",
			},
		},
		Depots:        depots,
		Patients:      patients,
		TravelMinutes: matrix,
	}
	if err := Validate(inst); err != nil {
		return nil, fmt.Errorf("generated instance failed validation: %w", err)
	}
	return inst, nil
}
