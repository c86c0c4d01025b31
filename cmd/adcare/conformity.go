package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcare/internal/classify"
	"adcare/internal/cnes"
	"adcare/internal/conformity"
	"adcare/internal/metrics"
	"adcare/internal/model"
)

func newConformityCmd() *cobra.Command {
	var (
		cnesCfg         cnes.Config
		occupationsPath string
		ruleVersion     string
		rulesFile       string
		csvOut          string
		xlsxOut         string
		jsonOut         string
		save            bool
	)

	cmd := &cobra.Command{
		Use:   "conformity",
		Short: "Evaluate team composition against the legal minimums",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			report := model.NewQualityReport()
			defer finishRun("conformity", started, report)

			wf, err := cnes.LoadWorkforce(cnesCfg, log, report)
			if err != nil {
				return err
			}
			metrics.RecordsRead.WithLabelValues("links").Add(float64(len(wf.Records)))

			teams := classify.AggregateTeams(wf.Metas, wf.Records, report)

			if occupationsPath != "" {
				titles, err := cnes.LoadOccupationTitles(occupationsPath)
				if err != nil {
					return err
				}
				logUnclassifiedOccupations(wf.Records, titles)
			}

			rules, err := loadRuleTable(ruleVersion, rulesFile)
			if err != nil {
				return err
			}

			verdicts, summary := conformity.EvaluateAll(teams, rules, report)
			for _, v := range verdicts {
				outcome := "non_compliant"
				if v.Compliant {
					outcome = "compliant"
				}
				metrics.TeamsEvaluated.WithLabelValues(v.TypeName, outcome).Inc()
			}
			log.Info("conformity evaluated",
				zap.String("ruleVersion", rules.Version),
				zap.Int("teams", summary.Total),
				zap.Int("compliant", summary.Compliant),
				zap.Float64("rate", summary.Rate))

			evaluated := alignTeams(teams, verdicts)
			if csvOut != "" {
				if err := conformity.WriteCSV(csvOut, evaluated, verdicts); err != nil {
					return err
				}
				log.Info("wrote team report", zap.String("path", csvOut))
			}
			if xlsxOut != "" {
				if err := conformity.WriteXLSX(xlsxOut, evaluated, verdicts, summary); err != nil {
					return err
				}
				log.Info("wrote spreadsheet report", zap.String("path", xlsxOut))
			}
			if jsonOut != "" {
				if err := writeJSON(jsonOut, struct {
					Summary  conformity.Summary        `json:"summary"`
					Verdicts []model.ConformityVerdict `json:"verdicts"`
					Quality  *model.QualityReport      `json:"quality"`
				}{summary, verdicts, report}); err != nil {
					return err
				}
				log.Info("wrote run JSON", zap.String("path", jsonOut))
			}

			if save {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				run := model.ConformityRun{
					ID:          uuid.NewString(),
					CreatedAt:   time.Now().UTC(),
					RuleVersion: rules.Version,
					Region:      cnesCfg.Region,
					Total:       summary.Total,
					Compliant:   summary.Compliant,
					Verdicts:    verdicts,
				}
				if err := st.SaveConformityRun(context.Background(), run); err != nil {
					return err
				}
				log.Info("saved conformity run", zap.String("id", run.ID))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cnesCfg.TeamsPath, "teams", "", "Team roster extract (tbEquipe CSV)")
	f.StringVar(&cnesCfg.LinksPath, "links", "", "Professional-to-team bridge extract (rlEstabEquipeProf CSV)")
	f.StringVar(&cnesCfg.HoursPath, "hours", "", "Weekly-hours extract (tbCargaHorariaSus CSV)")
	f.StringVar(&cnesCfg.FacilitiesPath, "facilities", "", "Facility coordinates extract (optional here)")
	f.StringVar(&cnesCfg.Region, "region", "", "Municipality-code prefix filter (empty keeps all)")
	f.StringVar(&occupationsPath, "occupations", "", "Occupation dictionary extract (tbAtividadeProfissional CSV, optional)")
	f.StringVar(&ruleVersion, "rule-version", conformity.RuleVersion2024, "Built-in rule table version")
	f.StringVar(&rulesFile, "rules-file", "", "Custom rule table YAML (overrides --rule-version)")
	f.StringVar(&csvOut, "csv-out", "", "Per-team report CSV path")
	f.StringVar(&xlsxOut, "xlsx-out", "", "Per-team report XLSX path")
	f.StringVar(&jsonOut, "json-out", "", "Full run JSON path (summary, verdicts, quality)")
	f.BoolVar(&save, "save", false, "Persist the run via --dsn (or in-memory)")
	_ = cmd.MarkFlagRequired("teams")
	_ = cmd.MarkFlagRequired("links")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func loadRuleTable(version, path string) (conformity.RuleTable, error) {
	if path != "" {
		return conformity.LoadRules(path)
	}
	return conformity.BuiltinRules(version)
}

// alignTeams filters the team list down to the teams that received a
// verdict, preserving order, so report rows line up.
func alignTeams(teams []model.Team, verdicts []model.ConformityVerdict) []model.Team {
	out := make([]model.Team, 0, len(verdicts))
	vi := 0
	for _, team := range teams {
		if vi < len(verdicts) && verdicts[vi].TeamID == team.ID {
			out = append(out, team)
			vi++
		}
	}
	return out
}

// logUnclassifiedOccupations surfaces the occupation codes that fell
// through the classifier, with their dictionary titles, so gaps in the
// prefix table stay visible.
func logUnclassifiedOccupations(records []model.ProfessionalRecord, titles map[string]string) {
	counts := map[string]int{}
	for _, rec := range records {
		if classify.Category(rec.OccupationCode) == model.Other {
			counts[rec.OccupationCode]++
		}
	}
	for code, n := range counts {
		log.Debug("unclassified occupation",
			zap.String("code", code),
			zap.String("title", titles[code]),
			zap.Int("records", n))
	}
	if len(counts) > 0 {
		log.Info("records with unclassified occupations", zap.Int("distinctCodes", len(counts)))
	}
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
