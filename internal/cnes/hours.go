package cnes

import (
	"adcare/internal/model"
)

// HoursRow is the per-professional weekly-hours breakdown summed across
// that professional's contracts.
type HoursRow struct {
	Outpatient float64
	Inpatient  float64
	Other      float64
}

// LoadWeeklyHours streams the hours extract and aggregates the three
// setting columns per professional. Rows with negative or unparsable hour
// values are rejected and reported, never propagated.
func LoadWeeklyHours(path string, report *model.QualityReport) (map[string]HoursRow, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer t.close()
	if err := t.require("CO_PROFISSIONAL_SUS", "QT_CARGA_HORARIA_AMBULATORIAL"); err != nil {
		return nil, err
	}

	hours := map[string]HoursRow{}
	err = t.eachRow(func(row []string) error {
		prof := t.field(row, "CO_PROFISSIONAL_SUS")
		if prof == "" {
			report.Add(model.QualityMalformedRow, "", "hours row without professional id")
			return nil
		}
		out, err1 := parseDecimal(t.field(row, "QT_CARGA_HORARIA_AMBULATORIAL"))
		inp, err2 := parseDecimal(t.field(row, "QT_CARGA_HOR_HOSP_SUS"))
		oth, err3 := parseDecimal(t.field(row, "QT_CARGA_HORARIA_OUTROS"))
		if err1 != nil || err2 != nil || err3 != nil {
			report.Add(model.QualityMalformedRow, prof, "unparsable hour fields")
			return nil
		}
		if out < 0 || inp < 0 || oth < 0 {
			report.Add(model.QualityNegativeHours, prof, "%.1f/%.1f/%.1f", out, inp, oth)
			return nil
		}
		h := hours[prof]
		h.Outpatient += out
		h.Inpatient += inp
		h.Other += oth
		hours[prof] = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hours, nil
}
