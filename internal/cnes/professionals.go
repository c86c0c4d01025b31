package cnes

import (
	"adcare/internal/model"
)

// LinkRow is one active professional-to-team assignment from the bridge
// extract.
type LinkRow struct {
	TeamSeq        string
	ProfessionalID string
	OccupationCode string
	FacilityID     string
}

// LoadLinks streams the bridge extract, keeping active assignments whose
// team sequence appears in wantSeq. Pass nil to keep all.
func LoadLinks(path string, wantSeq map[string]bool, report *model.QualityReport) ([]LinkRow, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer t.close()
	if err := t.require("SEQ_EQUIPE", "CO_PROFISSIONAL_SUS", "CO_CBO"); err != nil {
		return nil, err
	}

	var links []LinkRow
	err = t.eachRow(func(row []string) error {
		seq := t.field(row, "SEQ_EQUIPE")
		if wantSeq != nil && !wantSeq[seq] {
			return nil
		}
		if t.field(row, "DT_DESLIGAMENTO") != "" {
			report.Counts[model.QualityInactiveDiscards]++
			return nil
		}
		prof := t.field(row, "CO_PROFISSIONAL_SUS")
		if prof == "" {
			report.Add(model.QualityMalformedRow, seq, "assignment without professional id")
			return nil
		}
		links = append(links, LinkRow{
			TeamSeq:        seq,
			ProfessionalID: prof,
			OccupationCode: t.field(row, "CO_CBO"),
			FacilityID:     t.field(row, "CO_UNIDADE"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}
