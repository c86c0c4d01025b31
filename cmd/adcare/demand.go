package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcare/internal/census"
	"adcare/internal/metrics"
	"adcare/internal/model"
)

func newDemandCmd() *cobra.Command {
	var (
		sectorsPath string
		region      string
		scenario    string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "demand",
		Short: "Compute the per-sector demand table for a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			report := model.NewQualityReport()
			defer finishRun("demand", started, report)

			scen, err := census.ScenarioByName(scenario)
			if err != nil {
				return err
			}
			if err := scen.Validate(); err != nil {
				return err
			}

			sectors, err := census.LoadSectors(sectorsPath, region, report)
			if err != nil {
				return err
			}
			metrics.RecordsRead.WithLabelValues("sectors").Add(float64(len(sectors)))

			rows := census.DemandTable(sectors, scen)
			var total float64
			for _, row := range rows {
				total += row.Demand
			}
			log.Info("demand computed",
				zap.String("scenario", scen.Name),
				zap.Int("sectors", len(rows)),
				zap.Float64("expectedPatients", total))

			return writeDemandCSV(out, rows)
		},
	}

	f := cmd.Flags()
	f.StringVar(&sectorsPath, "sectors", "", "Census demographic aggregate CSV")
	f.StringVar(&region, "region", "", "Municipality-code prefix filter")
	f.StringVar(&scenario, "scenario", "moderate", "Demand scenario: conservative, moderate, or optimistic")
	f.StringVar(&out, "out", "demand.csv", "Output CSV path")
	_ = cmd.MarkFlagRequired("sectors")
	return cmd
}

func writeDemandCSV(path string, rows []census.DemandRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"sector_id", "municipality", "pop_total", "pop_60_69", "pop_70_plus", "demand"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.SectorID, row.Municipality,
			strconv.Itoa(row.PopulationTotal), strconv.Itoa(row.Pop60to69), strconv.Itoa(row.Pop70plus),
			strconv.FormatFloat(row.Demand, 'f', 4, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
