package cnes

import (
	"fmt"

	"go.uber.org/zap"

	"adcare/internal/classify"
	"adcare/internal/model"
)

// Config names the extracts one workforce load needs. FacilitiesPath is
// optional; without it teams carry no position (fine for conformity,
// insufficient for instance generation).
type Config struct {
	TeamsPath      string
	LinksPath      string
	HoursPath      string
	FacilitiesPath string
	Region         string // municipality-code prefix filter
}

// Workforce is the joined view the classifier aggregates over.
type Workforce struct {
	Metas   []classify.TeamMeta
	Records []model.ProfessionalRecord
}

// LoadWorkforce joins roster, bridge, hours, and facility extracts into
// professional records grouped under team metadata. Per-record problems
// land in report; a missing extract is fatal.
func LoadWorkforce(cfg Config, log *zap.Logger, report *model.QualityReport) (*Workforce, error) {
	teams, err := LoadTeams(cfg.TeamsPath, cfg.Region, report)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("no active home-care teams in region %q", cfg.Region)
	}
	log.Info("loaded team roster", zap.Int("teams", len(teams)), zap.String("region", cfg.Region))

	bySeq := map[string]TeamRow{}
	wantSeq := map[string]bool{}
	for _, team := range teams {
		bySeq[team.Seq] = team
		wantSeq[team.Seq] = true
	}

	links, err := LoadLinks(cfg.LinksPath, wantSeq, report)
	if err != nil {
		return nil, err
	}
	log.Info("loaded professional assignments", zap.Int("links", len(links)))

	hours, err := LoadWeeklyHours(cfg.HoursPath, report)
	if err != nil {
		return nil, err
	}
	log.Info("loaded weekly hours", zap.Int("professionals", len(hours)))

	var facilities map[string]Facility
	if cfg.FacilitiesPath != "" {
		wantIDs := map[string]bool{}
		for _, team := range teams {
			wantIDs[team.FacilityID] = true
		}
		facilities, err = LoadFacilities(cfg.FacilitiesPath, wantIDs, report)
		if err != nil {
			return nil, err
		}
		log.Info("loaded facility positions", zap.Int("facilities", len(facilities)))
	}

	wf := &Workforce{Metas: make([]classify.TeamMeta, 0, len(teams))}
	for _, team := range teams {
		meta := classify.TeamMeta{
			ID:           team.ID(),
			FacilityID:   team.FacilityID,
			Seq:          team.Seq,
			TypeCode:     team.TypeCode,
			Municipality: team.Municipality,
		}
		if facilities != nil {
			if fac, ok := facilities[team.FacilityID]; ok {
				pos := fac.Position
				meta.Position = &pos
			} else {
				report.Add(model.QualityMissingFacility, team.ID(), "facility %s has no usable position", team.FacilityID)
			}
		}
		wf.Metas = append(wf.Metas, meta)
	}

	for _, link := range links {
		team := bySeq[link.TeamSeq]
		h := hours[link.ProfessionalID] // absent professionals keep zero hours
		wf.Records = append(wf.Records, model.ProfessionalRecord{
			TeamID:          team.ID(),
			ProfessionalID:  link.ProfessionalID,
			OccupationCode:  link.OccupationCode,
			FacilityID:      team.FacilityID,
			OutpatientHours: h.Outpatient,
			InpatientHours:  h.Inpatient,
			OtherHours:      h.Other,
		})
	}
	return wf, nil
}
