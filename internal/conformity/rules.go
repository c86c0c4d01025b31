package conformity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"adcare/internal/model"
)

// Requirement modes. "any" is satisfied when a single listed category
// alone meets the thresholds; "sum" pools hours and headcount across the
// listed categories.
const (
	ModeAny = "any"
	ModeSum = "sum"
)

// Rule table versions shipped with the binary.
const (
	RuleVersion2024    = "portaria-3005-2024"
	RuleVersionPre2024 = "pre-2024"
)

// Requirement is one minimum-composition entry of a team-type rule.
type Requirement struct {
	Name         string               `yaml:"name"`
	Categories   []model.RoleCategory `yaml:"categories"`
	Mode         string               `yaml:"mode"`
	MinHours     float64              `yaml:"minHours"`
	MinHeadcount int                  `yaml:"minHeadcount"`
}

// TypeRule is the full requirement set for one team type.
type TypeRule struct {
	Label        string        `yaml:"label"`
	Requirements []Requirement `yaml:"requirements"`
}

// RuleTable is a versioned, data-driven composition rule set keyed by
// team type code. Historical comparisons switch tables, never code.
type RuleTable struct {
	Version string           `yaml:"version"`
	Teams   map[int]TypeRule `yaml:"teams"`
}

// Higher-education categories eligible for support-team composition.
// Physicians and nurses do not count toward EMAP; EMAP-R adds nurses.
var supportEligible = []model.RoleCategory{
	model.Physiotherapist,
	model.SocialWorker,
	model.SpeechTherapist,
	model.Nutritionist,
	model.Psychologist,
	model.OccupationalTherapist,
	model.Dentist,
	model.Pharmacist,
}

func emadRule(label string, physicianMin, nurseMin float64) TypeRule {
	return TypeRule{
		Label: label,
		Requirements: []Requirement{
			{Name: "physician_hours", Categories: []model.RoleCategory{model.Physician}, Mode: ModeAny, MinHours: physicianMin},
			{Name: "nurse_hours", Categories: []model.RoleCategory{model.Nurse}, Mode: ModeAny, MinHours: nurseMin},
			{Name: "nursing_technician_hours", Categories: []model.RoleCategory{model.NursingTechnician}, Mode: ModeAny, MinHours: 120},
			{Name: "physio_or_social_worker_hours", Categories: []model.RoleCategory{model.Physiotherapist, model.SocialWorker}, Mode: ModeAny, MinHours: 30},
		},
	}
}

func supportRule(label string, categories []model.RoleCategory, totalHours float64) TypeRule {
	return TypeRule{
		Label: label,
		Requirements: []Requirement{
			{Name: "support_composition", Categories: categories, Mode: ModeSum, MinHours: totalHours, MinHeadcount: 3},
		},
	}
}

// BuiltinRules returns one of the rule tables shipped with the binary.
func BuiltinRules(version string) (RuleTable, error) {
	switch version {
	case RuleVersion2024:
		return RuleTable{
			Version: RuleVersion2024,
			Teams: map[int]TypeRule{
				model.TeamTypeEMADI:  emadRule("EMAD I", 40, 60),
				model.TeamTypeEMADII: emadRule("EMAD II", 20, 30),
				model.TeamTypeEMAP:   supportRule("EMAP", supportEligible, 90),
				model.TeamTypeEMAPR:  supportRule("EMAP-R", append(append([]model.RoleCategory{}, supportEligible...), model.Nurse), 60),
			},
		}, nil
	case RuleVersionPre2024:
		// the earlier ordinance required 40h of nurse coverage on EMAD I
		return RuleTable{
			Version: RuleVersionPre2024,
			Teams: map[int]TypeRule{
				model.TeamTypeEMADI:  emadRule("EMAD I", 40, 40),
				model.TeamTypeEMADII: emadRule("EMAD II", 20, 30),
				model.TeamTypeEMAP:   supportRule("EMAP", supportEligible, 90),
				model.TeamTypeEMAPR:  supportRule("EMAP-R", append(append([]model.RoleCategory{}, supportEligible...), model.Nurse), 60),
			},
		}, nil
	}
	return RuleTable{}, fmt.Errorf("unknown rule version %q", version)
}

// LoadRules reads a rule table from YAML and validates it. Any problem is
// a configuration error and fatal for the run.
func LoadRules(path string) (RuleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleTable{}, fmt.Errorf("read rule table %s: %w", path, err)
	}
	var table RuleTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return RuleTable{}, fmt.Errorf("parse rule table %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		return RuleTable{}, fmt.Errorf("rule table %s: %w", path, err)
	}
	return table, nil
}

func (t RuleTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("missing version")
	}
	if len(t.Teams) == 0 {
		return fmt.Errorf("no team rules defined")
	}
	for code, rule := range t.Teams {
		for _, req := range rule.Requirements {
			if len(req.Categories) == 0 {
				return fmt.Errorf("type %d requirement %q has no categories", code, req.Name)
			}
			if req.Mode != ModeAny && req.Mode != ModeSum {
				return fmt.Errorf("type %d requirement %q has invalid mode %q", code, req.Name, req.Mode)
			}
			if req.MinHours < 0 || req.MinHeadcount < 0 {
				return fmt.Errorf("type %d requirement %q has negative threshold", code, req.Name)
			}
			if req.MinHours == 0 && req.MinHeadcount == 0 {
				return fmt.Errorf("type %d requirement %q has no threshold", code, req.Name)
			}
		}
	}
	return nil
}
