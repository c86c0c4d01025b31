package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcare/internal/logging"
	"adcare/internal/metrics"
	"adcare/internal/model"
	"adcare/internal/store"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

var (
	flagLogLevel    string
	flagLogFormat   string
	flagPushGateway string
	flagDSN         string

	log *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:          "adcare",
		Short:        "Home-care workforce conformity and routing-instance generation",
		Long:         "adcare evaluates home-care team composition against the legal minimums and generates synthetic routing instances from registry and census data.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logging.New(flagLogLevel, flagLogFormat)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			metrics.RegisterDefault()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	pf.StringVar(&flagLogFormat, "log-format", "console", "Log format: console or json")
	pf.StringVar(&flagPushGateway, "push-gateway", "", "Pushgateway base URL for run metrics (empty disables)")
	pf.StringVar(&flagDSN, "dsn", "", "Postgres DSN for run persistence (empty uses in-memory)")

	root.AddCommand(newConformityCmd(), newGenerateCmd(), newDemandCmd(), newFetchCensusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (store.Store, error) {
	if flagDSN == "" {
		return store.NewMemory(), nil
	}
	return store.NewPostgres(flagDSN)
}

// finishRun closes out a command: quality summary, duration metric, and
// the optional Pushgateway export.
func finishRun(command string, started time.Time, report *model.QualityReport) {
	metrics.RunDuration.WithLabelValues(command).Observe(time.Since(started).Seconds())
	for kind, count := range report.Counts {
		metrics.RecordsRejected.WithLabelValues(kind).Add(float64(count))
	}
	if report.Total() > 0 {
		log.Warn("run finished with data-quality issues",
			zap.Int("total", report.Total()),
			zap.Any("counts", report.Counts))
	}
	if err := metrics.Push(flagPushGateway, "adcare_"+command); err != nil {
		log.Warn("metrics push failed", zap.Error(err))
	}
	_ = log.Sync()
}
