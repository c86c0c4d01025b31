package instance

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"adcare/internal/model"
)

// Write persists an instance as an indented JSON artifact.
func Write(inst *model.Instance, path string) error {
	raw, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write instance %s: %w", path, err)
	}
	return nil
}

// Load reads an emitted instance back and re-validates it, so a consumer
// sees exactly the structure the generator guaranteed.
func Load(path string) (*model.Instance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance %s: %w", path, err)
	}
	var inst model.Instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("parse instance %s: %w", path, err)
	}
	if err := Validate(&inst); err != nil {
		return nil, fmt.Errorf("instance %s: %w", path, err)
	}
	return &inst, nil
}

// WriteCSVFiles writes the depot/patient/matrix side-outputs next to the
// JSON artifact, the format spreadsheet-bound collaborators prefer.
func WriteCSVFiles(inst *model.Instance, dir string) error {
	name := inst.Metadata.Name
	if name == "" {
		name = "instance"
	}

	depotRows := [][]string{{"id", "team_id", "facility_id", "type_code", "type_name", "lat", "lng", "capacity_hours", "daily_capacity_min"}}
	for _, d := range inst.Depots {
		depotRows = append(depotRows, []string{
			d.ID, d.TeamID, d.FacilityID,
			strconv.Itoa(d.TypeCode), d.TypeName,
			formatFloat(d.Position.Lat), formatFloat(d.Position.Lng),
			formatFloat(d.CapacityHours), strconv.Itoa(d.DailyCapacityMin),
		})
	}
	if err := writeCSV(filepath.Join(dir, name+"_depots.csv"), depotRows); err != nil {
		return err
	}

	patientRows := [][]string{{"id", "sector_id", "lat", "lng", "modality", "window_start_min", "window_end_min", "service_min", "visits_per_week", "required_skill", "priority"}}
	for _, p := range inst.Patients {
		patientRows = append(patientRows, []string{
			strconv.Itoa(p.ID), p.SectorID,
			formatFloat(p.Position.Lat), formatFloat(p.Position.Lng),
			p.Modality,
			strconv.Itoa(p.Window.StartMin), strconv.Itoa(p.Window.EndMin),
			strconv.Itoa(p.ServiceMin), strconv.Itoa(p.VisitsPerWeek),
			string(p.RequiredSkill), strconv.Itoa(p.Priority),
		})
	}
	if err := writeCSV(filepath.Join(dir, name+"_patients.csv"), patientRows); err != nil {
		return err
	}

	matrixRows := make([][]string, 0, len(inst.TravelMinutes))
	for _, row := range inst.TravelMinutes {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatFloat(v)
		}
		matrixRows = append(matrixRows, cells)
	}
	return writeCSV(filepath.Join(dir, name+"_matrix.csv"), matrixRows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
