package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcare/internal/census"
	"adcare/internal/classify"
	"adcare/internal/cnes"
	"adcare/internal/instance"
	"adcare/internal/metrics"
	"adcare/internal/model"
)

func newGenerateCmd() *cobra.Command {
	var (
		cnesCfg      cnes.Config
		sectorsPath  string
		geometryPath string
		presetsFile  string
		standard     bool
		outDir       string
		withCSV      bool
		save         bool

		name      string
		patients  int
		maxDepots int
		seed      int64
		scenario  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic routing instances from registry and census data",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			report := model.NewQualityReport()
			defer finishRun("generate", started, report)

			configs, err := resolveConfigs(presetsFile, standard, func(cfg *instance.Config) {
				cfg.Name = name
				cfg.Patients = patients
				cfg.MaxDepots = maxDepots
				cfg.Seed = seed
				cfg.Scenario = scenario
			})
			if err != nil {
				return err
			}
			for i := range configs {
				if configs[i].Region == "" {
					configs[i].Region = cnesCfg.Region
				}
				if configs[i].Name == "" {
					configs[i].Name = fmt.Sprintf("instance_%d", configs[i].Patients)
				}
			}

			wf, err := cnes.LoadWorkforce(cnesCfg, log, report)
			if err != nil {
				return err
			}
			teams := classify.AggregateTeams(wf.Metas, wf.Records, report)

			sectors, err := census.LoadSectors(sectorsPath, cnesCfg.Region, report)
			if err != nil {
				return err
			}
			metrics.RecordsRead.WithLabelValues("sectors").Add(float64(len(sectors)))
			if geometryPath != "" {
				geoms, err := census.LoadGeometry(geometryPath, report)
				if err != nil {
					return err
				}
				census.Attach(sectors, geoms)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			for _, cfg := range configs {
				inst, err := instance.Generate(teams, sectors, cfg, log, report)
				if err != nil {
					return fmt.Errorf("generate %s: %w", cfg.Name, err)
				}
				metrics.PatientsSampled.WithLabelValues(cfg.Name).Add(float64(len(inst.Patients)))

				path := filepath.Join(outDir, cfg.Name+".json")
				if err := instance.Write(inst, path); err != nil {
					return err
				}
				if withCSV {
					if err := instance.WriteCSVFiles(inst, outDir); err != nil {
						return err
					}
				}
				log.Info("wrote instance",
					zap.String("path", path),
					zap.Int("depots", len(inst.Depots)),
					zap.Int("patients", len(inst.Patients)),
					zap.Int64("seed", cfg.Seed))

				if save {
					st, err := openStore()
					if err != nil {
						return err
					}
					if err := st.SaveInstanceMeta(context.Background(), inst.Metadata); err != nil {
						_ = st.Close()
						return err
					}
					_ = st.Close()
				}
			}
			for _, kind := range []string{model.QualityEmptySector, model.QualityBadGeometry} {
				metrics.SectorsSkipped.WithLabelValues(kind).Add(float64(report.Counts[kind]))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cnesCfg.TeamsPath, "teams", "", "Team roster extract (tbEquipe CSV)")
	f.StringVar(&cnesCfg.LinksPath, "links", "", "Professional-to-team bridge extract (rlEstabEquipeProf CSV)")
	f.StringVar(&cnesCfg.HoursPath, "hours", "", "Weekly-hours extract (tbCargaHorariaSus CSV)")
	f.StringVar(&cnesCfg.FacilitiesPath, "facilities", "", "Facility coordinates extract (required: depots need positions)")
	f.StringVar(&cnesCfg.Region, "region", "", "Municipality-code prefix filter")
	f.StringVar(&sectorsPath, "sectors", "", "Census demographic aggregate CSV")
	f.StringVar(&geometryPath, "geometry", "", "Sector centroid/bbox export CSV")
	f.StringVar(&presetsFile, "presets", "", "Preset list YAML; generates one instance per entry")
	f.BoolVar(&standard, "standard", false, "Generate the built-in small/medium/large preset set")
	f.StringVar(&outDir, "out-dir", ".", "Output directory")
	f.BoolVar(&withCSV, "csv", false, "Also write depot/patient/matrix CSV side-outputs")
	f.BoolVar(&save, "save", false, "Persist instance metadata via --dsn (or in-memory)")

	f.StringVar(&name, "name", "", "Instance name (single-run mode)")
	f.IntVar(&patients, "patients", 50, "Patient count (single-run mode)")
	f.IntVar(&maxDepots, "max-depots", 0, "Depot cap, 0 keeps all (single-run mode)")
	f.Int64Var(&seed, "seed", 1, "Random seed (single-run mode)")
	f.StringVar(&scenario, "scenario", "moderate", "Demand scenario: conservative, moderate, or optimistic")

	_ = cmd.MarkFlagRequired("teams")
	_ = cmd.MarkFlagRequired("links")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("facilities")
	_ = cmd.MarkFlagRequired("sectors")
	return cmd
}

// resolveConfigs picks the generation configs: a preset file, the built-in
// preset set, or a single config assembled from flags.
func resolveConfigs(presetsFile string, standard bool, applyFlags func(*instance.Config)) ([]instance.Config, error) {
	if presetsFile != "" && standard {
		return nil, fmt.Errorf("--presets and --standard are mutually exclusive")
	}
	if presetsFile != "" {
		return instance.LoadPresets(presetsFile)
	}
	if standard {
		return instance.BuiltinPresets(), nil
	}
	cfg := instance.DefaultConfig()
	applyFlags(&cfg)
	return []instance.Config{cfg}, nil
}
