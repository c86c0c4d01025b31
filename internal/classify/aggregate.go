package classify

import (
	"github.com/samber/lo"

	"adcare/internal/model"
)

// MinQualifyingHours is the regulatory floor: professionals with a total
// weekly load under 20h are not counted toward team composition. The bound
// is inclusive, exactly 20.0h qualifies.
const MinQualifyingHours = 20.0

// TeamMeta carries roster attributes that aggregation cannot derive from
// the professional records themselves.
type TeamMeta struct {
	ID           string
	FacilityID   string
	Seq          string
	TypeCode     int
	Municipality string
	Position     *model.GeoPoint
}

// AggregateTeam builds the Team aggregate for one roster entry from its
// professional records. Records below the qualifying floor are dropped
// (and counted in the report); the rest are grouped by role category,
// summing hours and counting distinct professionals per category.
func AggregateTeam(meta TeamMeta, records []model.ProfessionalRecord, report *model.QualityReport) model.Team {
	team := model.Team{
		ID:           meta.ID,
		FacilityID:   meta.FacilityID,
		Seq:          meta.Seq,
		TypeCode:     meta.TypeCode,
		Municipality: meta.Municipality,
		Position:     meta.Position,
		Skills:       map[model.RoleCategory]model.SkillAggregate{},
	}

	qualifying := lo.Filter(records, func(rec model.ProfessionalRecord, _ int) bool {
		hours := WeeklyHours(rec)
		if hours < MinQualifyingHours {
			if report != nil {
				report.Add(model.QualityBelowHoursFloor, rec.ProfessionalID, "%.2fh on team %s", hours, meta.ID)
			}
			return false
		}
		return true
	})

	byCategory := lo.GroupBy(qualifying, func(rec model.ProfessionalRecord) model.RoleCategory {
		return Category(rec.OccupationCode)
	})

	for cat, recs := range byCategory {
		agg := model.SkillAggregate{}
		seen := map[string]bool{}
		for _, rec := range recs {
			agg.Hours += WeeklyHours(rec)
			if !seen[rec.ProfessionalID] {
				seen[rec.ProfessionalID] = true
				agg.Headcount++
			}
		}
		team.Skills[cat] = agg
		team.CapacityHours += agg.Hours
	}
	return team
}

// AggregateTeams aggregates every roster team, keyed by team ID. Teams
// with no qualifying records still appear, with zero capacity.
func AggregateTeams(metas []TeamMeta, records []model.ProfessionalRecord, report *model.QualityReport) []model.Team {
	byTeam := lo.GroupBy(records, func(rec model.ProfessionalRecord) string { return rec.TeamID })

	teams := make([]model.Team, 0, len(metas))
	for _, meta := range metas {
		teams = append(teams, AggregateTeam(meta, byTeam[meta.ID], report))
	}
	return teams
}
