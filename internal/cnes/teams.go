package cnes

import (
	"adcare/internal/model"
)

// TeamRow is one active home-care team from the roster extract.
type TeamRow struct {
	Municipality string
	FacilityID   string
	TypeCode     int
	TeamCode     string
	Seq          string
}

// ID identifies a team by (facility, sequence), the roster's natural key.
func (t TeamRow) ID() string { return t.FacilityID + "/" + t.Seq }

// adTeamTypes are the four legal home-care team kinds; every other roster
// row is out of scope for this pipeline.
var adTeamTypes = map[int]bool{
	model.TeamTypeEMADI:  true,
	model.TeamTypeEMADII: true,
	model.TeamTypeEMAP:   true,
	model.TeamTypeEMAPR:  true,
}

// LoadTeams streams the team roster, keeping active home-care teams in
// the requested region (municipality-code prefix; empty keeps all).
func LoadTeams(path, region string, report *model.QualityReport) ([]TeamRow, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer t.close()
	if err := t.require("CO_MUNICIPIO", "CO_UNIDADE", "TP_EQUIPE", "SEQ_EQUIPE"); err != nil {
		return nil, err
	}

	var teams []TeamRow
	err = t.eachRow(func(row []string) error {
		typeCode, convErr := parseIntField(t.field(row, "TP_EQUIPE"))
		if convErr != nil {
			report.Add(model.QualityMalformedRow, t.field(row, "SEQ_EQUIPE"), "bad team type %q", t.field(row, "TP_EQUIPE"))
			return nil
		}
		if !adTeamTypes[typeCode] {
			return nil
		}
		if t.field(row, "DT_DESATIVACAO") != "" {
			report.Counts[model.QualityInactiveDiscards]++
			return nil
		}
		muni := t.field(row, "CO_MUNICIPIO")
		if region != "" && !hasPrefix(muni, region) {
			return nil
		}
		teams = append(teams, TeamRow{
			Municipality: muni,
			FacilityID:   t.field(row, "CO_UNIDADE"),
			TypeCode:     typeCode,
			TeamCode:     t.field(row, "CO_EQUIPE"),
			Seq:          t.field(row, "SEQ_EQUIPE"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
