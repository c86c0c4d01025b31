package conformity

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"adcare/internal/model"
)

// reportCategories fixes the column order of the per-team report.
var reportCategories = []model.RoleCategory{
	model.Physician,
	model.Nurse,
	model.NursingTechnician,
	model.Physiotherapist,
	model.SocialWorker,
	model.SpeechTherapist,
	model.Nutritionist,
	model.Psychologist,
	model.OccupationalTherapist,
	model.Dentist,
	model.Pharmacist,
	model.Other,
}

func reportHeader() []string {
	header := []string{"team_id", "type_code", "type_name", "capacity_hours"}
	for _, cat := range reportCategories {
		name := strings.ToLower(string(cat))
		header = append(header, name+"_hours", name+"_headcount")
	}
	return append(header, "compliant", "unmet")
}

func reportRow(team model.Team, verdict model.ConformityVerdict) []string {
	row := []string{
		team.ID,
		fmt.Sprintf("%d", verdict.TypeCode),
		verdict.TypeName,
		fmt.Sprintf("%.2f", team.CapacityHours),
	}
	for _, cat := range reportCategories {
		agg := team.Skills[cat]
		row = append(row, fmt.Sprintf("%.2f", agg.Hours), fmt.Sprintf("%d", agg.Headcount))
	}
	unmet := make([]string, 0, len(verdict.Unmet))
	for _, u := range verdict.Unmet {
		if u.RequiredCount > 0 {
			unmet = append(unmet, fmt.Sprintf("%s: %.0fh/%d < %.0fh/%d", u.Requirement, u.ActualHours, u.ActualCount, u.RequiredHours, u.RequiredCount))
		} else {
			unmet = append(unmet, fmt.Sprintf("%s: %.0fh < %.0fh", u.Requirement, u.ActualHours, u.RequiredHours))
		}
	}
	return append(row, fmt.Sprintf("%t", verdict.Compliant), strings.Join(unmet, "; "))
}

// WriteCSV writes the per-team conformity table. Teams and verdicts must
// be aligned: verdicts[i] belongs to teams[i].
func WriteCSV(path string, teams []model.Team, verdicts []model.ConformityVerdict) error {
	if len(teams) != len(verdicts) {
		return fmt.Errorf("teams/verdicts length mismatch: %d vs %d", len(teams), len(verdicts))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader()); err != nil {
		return err
	}
	for i, team := range teams {
		if err := w.Write(reportRow(team, verdicts[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the same table as a spreadsheet with a summary sheet,
// the format the registry analysts actually circulate.
func WriteXLSX(path string, teams []model.Team, verdicts []model.ConformityVerdict, summary Summary) error {
	if len(teams) != len(verdicts) {
		return fmt.Errorf("teams/verdicts length mismatch: %d vs %d", len(teams), len(verdicts))
	}
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Teams"
	f.SetSheetName(f.GetSheetName(0), sheet)

	header := reportHeader()
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for i, team := range teams {
		for col, val := range reportRow(team, verdicts[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	const sumSheet = "Summary"
	if _, err := f.NewSheet(sumSheet); err != nil {
		return err
	}
	rows := [][]any{
		{"rule_version", summary.RuleVersion},
		{"teams_evaluated", summary.Total},
		{"compliant", summary.Compliant},
		{"compliance_rate", fmt.Sprintf("%.1f%%", summary.Rate*100)},
		{},
		{"type", "total", "compliant", "rate"},
	}
	for _, ts := range summary.PerType {
		rows = append(rows, []any{ts.TypeName, ts.Total, ts.Compliant, fmt.Sprintf("%.1f%%", ts.Rate*100)})
	}
	for r, row := range rows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sumSheet, cell, val); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
