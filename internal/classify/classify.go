package classify

import (
	"strings"

	"adcare/internal/model"
)

// prefixEntry maps an occupation-code prefix to a role category. The table
// is ordered and immutable; first match wins.
type prefixEntry struct {
	prefix   string
	category model.RoleCategory
}

var prefixTable = []prefixEntry{
	{"2251", model.Physician},
	{"2252", model.Physician},
	{"2253", model.Physician},
	{"2235", model.Nurse},
	{"3222", model.NursingTechnician},
	{"2236", model.Physiotherapist},
	{"2516", model.SocialWorker},
	{"2238", model.SpeechTherapist},
	{"2237", model.Nutritionist},
	{"2515", model.Psychologist},
	{"2239", model.OccupationalTherapist},
	{"2232", model.Dentist},
	{"2234", model.Pharmacist},
}

// Category classifies an occupation code by its leading digits. Total and
// side-effect free: any code outside the table maps to OTHER.
func Category(occupationCode string) model.RoleCategory {
	code := strings.TrimSpace(occupationCode)
	for _, e := range prefixTable {
		if strings.HasPrefix(code, e.prefix) {
			return e.category
		}
	}
	return model.Other
}

// WeeklyHours sums the three per-setting hour fields of a record. Missing
// fields arrive as zero from ingestion, so the sum is always non-negative
// for accepted records.
func WeeklyHours(rec model.ProfessionalRecord) float64 {
	return rec.OutpatientHours + rec.InpatientHours + rec.OtherHours
}
