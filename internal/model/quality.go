package model

import "fmt"

// Data-quality issue kinds. Issues are accumulated and summarized at the
// end of a run; they never abort it.
const (
	QualityUnknownTeamType  = "unknown_team_type"
	QualityNegativeHours    = "negative_hours"
	QualityBadCoordinate    = "bad_coordinate"
	QualityMissingFacility  = "missing_facility"
	QualityEmptySector      = "empty_sector"
	QualityBadGeometry      = "bad_geometry"
	QualityMalformedRow     = "malformed_row"
	QualitySkillReassigned  = "skill_reassigned"
	QualityBelowHoursFloor  = "below_hours_floor"
	QualityInactiveDiscards = "inactive_discarded"
)

type QualityIssue struct {
	Kind   string `json:"kind"`
	Ref    string `json:"ref"`
	Detail string `json:"detail,omitempty"`
}

// QualityReport accumulates per-record data-quality issues for the
// end-of-run summary. Not safe for concurrent use; runs are single-pass.
type QualityReport struct {
	Counts map[string]int `json:"counts"`
	Issues []QualityIssue `json:"issues,omitempty"`

	// keep at most this many detailed issues; counts are always exact
	maxDetail int
}

func NewQualityReport() *QualityReport {
	return &QualityReport{Counts: map[string]int{}, maxDetail: 1000}
}

func (r *QualityReport) Add(kind, ref, format string, args ...any) {
	r.Counts[kind]++
	if len(r.Issues) < r.maxDetail {
		r.Issues = append(r.Issues, QualityIssue{Kind: kind, Ref: ref, Detail: fmt.Sprintf(format, args...)})
	}
}

func (r *QualityReport) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}
