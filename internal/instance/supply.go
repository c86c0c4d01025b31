package instance

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"adcare/internal/model"
)

// SelectSupplySide maps real teams onto instance depots: region filter,
// facility position required, capacity and skill vector carried over.
// Order is stable (team ID) so a seed fully determines the instance.
func SelectSupplySide(teams []model.Team, cfg Config, rng *rand.Rand, report *model.QualityReport) []model.Depot {
	eligible := make([]model.Team, 0, len(teams))
	for _, team := range teams {
		if cfg.Region != "" && !strings.HasPrefix(team.Municipality, cfg.Region) {
			continue
		}
		if team.Position == nil {
			report.Add(model.QualityMissingFacility, team.ID, "no facility position, excluded from supply side")
			continue
		}
		eligible = append(eligible, team)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })

	if cfg.MaxDepots > 0 && len(eligible) > cfg.MaxDepots {
		eligible = eligible[:cfg.MaxDepots]
	}

	depots := make([]model.Depot, 0, len(eligible))
	for i, team := range eligible {
		skills := make(map[model.RoleCategory]model.SkillAggregate, len(team.Skills))
		for cat, agg := range team.Skills {
			skills[cat] = agg
		}
		depots = append(depots, model.Depot{
			ID:               depotID(i),
			TeamID:           team.ID,
			FacilityID:       team.FacilityID,
			TypeCode:         team.TypeCode,
			TypeName:         model.TeamTypeName[team.TypeCode],
			Position:         *team.Position,
			CapacityHours:    team.CapacityHours,
			DailyCapacityMin: cfg.DailyCapacityMin.Min + rng.Intn(cfg.DailyCapacityMin.Max-cfg.DailyCapacityMin.Min+1),
			Skills:           skills,
		})
	}
	return depots
}

func depotID(i int) string {
	return "d" + strconv.Itoa(i+1)
}
