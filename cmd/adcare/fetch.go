package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcare/internal/census"
	"adcare/internal/model"
)

// defaultCensusURL is the Censo 2022 per-sector demographic aggregate on
// the IBGE public mirror.
const defaultCensusURL = "https://ftp.ibge.gov.br/Censos/Censo_Demografico_2022/Agregados_por_Setores_Censitarios/Agregados_por_Setor_csv/Agregados_por_setores_demografia_BR_csv.zip"

func newFetchCensusCmd() *cobra.Command {
	var (
		url     string
		zipPath string
		destDir string
	)

	cmd := &cobra.Command{
		Use:   "fetch-census",
		Short: "Download and extract the census aggregate archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			report := model.NewQualityReport()
			defer finishRun("fetch-census", started, report)

			fetcher := census.NewFetcher(log)
			if err := fetcher.FetchArchive(cmd.Context(), url, zipPath, destDir); err != nil {
				return err
			}
			log.Info("census data ready", zap.String("dir", destDir))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", defaultCensusURL, "Archive URL")
	f.StringVar(&zipPath, "zip", "census.zip", "Local archive path (reused if present)")
	f.StringVar(&destDir, "dest", "census_data", "Extraction directory")
	return cmd
}
