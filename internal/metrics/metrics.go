package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Registry is the dedicated Prometheus registry for the batch jobs.
	Registry = prometheus.NewRegistry()

	// RecordsRead counts workforce records read per CNES extract.
	RecordsRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "adcare_records_read_total", Help: "Source records read, by extract."},
		[]string{"extract"},
	)
	// RecordsRejected counts records dropped during ingestion, by reason.
	RecordsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "adcare_records_rejected_total", Help: "Source records rejected, by reason."},
		[]string{"reason"},
	)
	// TeamsEvaluated counts conformity verdicts by team type and outcome.
	TeamsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "adcare_teams_evaluated_total", Help: "Teams evaluated, by type and outcome."},
		[]string{"team_type", "outcome"},
	)
	// PatientsSampled counts generated patients by instance name.
	PatientsSampled = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "adcare_patients_sampled_total", Help: "Synthetic patients sampled, by instance."},
		[]string{"instance"},
	)
	// SectorsSkipped counts census sectors excluded from sampling.
	SectorsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "adcare_sectors_skipped_total", Help: "Census sectors skipped, by reason."},
		[]string{"reason"},
	)
	// RunDuration records end-to-end command duration in seconds.
	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "adcare_run_duration_seconds", Help: "Command duration in seconds.", Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600}},
		[]string{"command"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(RecordsRead)
		Registry.MustRegister(RecordsRejected)
		Registry.MustRegister(TeamsEvaluated)
		Registry.MustRegister(PatientsSampled)
		Registry.MustRegister(SectorsSkipped)
		Registry.MustRegister(RunDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Push ships the registry to a Pushgateway. Batch jobs exit before a
// scraper would ever see them, so push is the only export path.
func Push(gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(Registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
