package conformity

import (
	"fmt"
	"sort"

	"adcare/internal/model"
)

// Evaluate checks one team against the rule table for its declared type.
// A team type absent from the table is an error; the caller records it as
// a data-quality problem rather than aborting the run.
func Evaluate(team model.Team, rules RuleTable) (model.ConformityVerdict, error) {
	rule, ok := rules.Teams[team.TypeCode]
	if !ok {
		return model.ConformityVerdict{}, fmt.Errorf("no rule for team type %d (team %s)", team.TypeCode, team.ID)
	}

	verdict := model.ConformityVerdict{
		TeamID:    team.ID,
		TypeCode:  team.TypeCode,
		TypeName:  rule.Label,
		Compliant: true,
	}

	for _, req := range rule.Requirements {
		hours, count := measure(team, req)
		met := hours >= req.MinHours && count >= req.MinHeadcount
		if !met {
			verdict.Compliant = false
			verdict.Unmet = append(verdict.Unmet, model.UnmetRequirement{
				Requirement:   req.Name,
				Categories:    req.Categories,
				RequiredHours: req.MinHours,
				ActualHours:   hours,
				RequiredCount: req.MinHeadcount,
				ActualCount:   count,
			})
		}
	}
	return verdict, nil
}

// measure extracts the team's actual hours/headcount for a requirement.
// An absent category contributes zero, so it trivially fails a positive
// threshold.
func measure(team model.Team, req Requirement) (float64, int) {
	switch req.Mode {
	case ModeSum:
		var hours float64
		var count int
		for _, cat := range req.Categories {
			agg := team.Skills[cat]
			hours += agg.Hours
			count += agg.Headcount
		}
		return hours, count
	default: // ModeAny: the best single category must clear the bar alone
		var bestHours float64
		var bestCount int
		for _, cat := range req.Categories {
			agg := team.Skills[cat]
			if agg.Hours > bestHours {
				bestHours = agg.Hours
			}
			if agg.Headcount > bestCount {
				bestCount = agg.Headcount
			}
		}
		return bestHours, bestCount
	}
}

// TypeSummary aggregates verdicts for one team type.
type TypeSummary struct {
	TypeCode  int     `json:"typeCode"`
	TypeName  string  `json:"typeName"`
	Total     int     `json:"total"`
	Compliant int     `json:"compliant"`
	Rate      float64 `json:"rate"`
}

// UnmetCount ranks how often a requirement failed across the dataset.
type UnmetCount struct {
	Requirement string `json:"requirement"`
	Count       int    `json:"count"`
}

// Summary is the dataset-level conformity result.
type Summary struct {
	RuleVersion string        `json:"ruleVersion"`
	Total       int           `json:"total"`
	Compliant   int           `json:"compliant"`
	Rate        float64       `json:"rate"`
	PerType     []TypeSummary `json:"perType"`
	TopUnmet    []UnmetCount  `json:"topUnmet,omitempty"`
}

// EvaluateAll evaluates every team, skipping (and reporting) teams whose
// type has no rule. Verdicts are returned in team order minus skips.
func EvaluateAll(teams []model.Team, rules RuleTable, report *model.QualityReport) ([]model.ConformityVerdict, Summary) {
	verdicts := make([]model.ConformityVerdict, 0, len(teams))
	perType := map[int]*TypeSummary{}
	unmet := map[string]int{}

	for _, team := range teams {
		verdict, err := Evaluate(team, rules)
		if err != nil {
			if report != nil {
				report.Add(model.QualityUnknownTeamType, team.ID, "type code %d", team.TypeCode)
			}
			continue
		}
		verdicts = append(verdicts, verdict)

		ts, ok := perType[team.TypeCode]
		if !ok {
			ts = &TypeSummary{TypeCode: team.TypeCode, TypeName: verdict.TypeName}
			perType[team.TypeCode] = ts
		}
		ts.Total++
		if verdict.Compliant {
			ts.Compliant++
		}
		for _, u := range verdict.Unmet {
			unmet[u.Requirement]++
		}
	}

	summary := Summary{RuleVersion: rules.Version, Total: len(verdicts)}
	for _, v := range verdicts {
		if v.Compliant {
			summary.Compliant++
		}
	}
	if summary.Total > 0 {
		summary.Rate = float64(summary.Compliant) / float64(summary.Total)
	}

	codes := make([]int, 0, len(perType))
	for code := range perType {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		ts := perType[code]
		if ts.Total > 0 {
			ts.Rate = float64(ts.Compliant) / float64(ts.Total)
		}
		summary.PerType = append(summary.PerType, *ts)
	}

	for name, count := range unmet {
		summary.TopUnmet = append(summary.TopUnmet, UnmetCount{Requirement: name, Count: count})
	}
	sort.Slice(summary.TopUnmet, func(i, j int) bool {
		if summary.TopUnmet[i].Count != summary.TopUnmet[j].Count {
			return summary.TopUnmet[i].Count > summary.TopUnmet[j].Count
		}
		return summary.TopUnmet[i].Requirement < summary.TopUnmet[j].Requirement
	})

	return verdicts, summary
}
