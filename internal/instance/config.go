package instance

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"adcare/internal/model"
)

// Range is an inclusive integer range for sampled attributes.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r Range) valid() bool { return r.Min >= 0 && r.Max >= r.Min }

// WindowChoice is one preferred-visit-window option with its draw share.
type WindowChoice struct {
	Name     string  `yaml:"name"`
	StartMin int     `yaml:"startMin"`
	EndMin   int     `yaml:"endMin"`
	Share    float64 `yaml:"share"`
}

// Config drives one instance generation. Size variants are presets of
// this struct, never separate code paths.
type Config struct {
	Name      string  `yaml:"name"`
	Patients  int     `yaml:"patients"`
	MaxDepots int     `yaml:"maxDepots"` // 0 keeps every eligible team
	Region    string  `yaml:"region"`
	Seed      int64   `yaml:"seed"`
	Scenario  string  `yaml:"scenario"`
	SpeedKmh  float64 `yaml:"speedKmh"`
	JitterKm  float64 `yaml:"jitterKm"` // position spread when a sector has no bbox

	// AD2 is medium complexity, AD3 high; AD1 stays with primary care and
	// is out of scope for these teams.
	ShareAD2 float64 `yaml:"shareAD2"`

	Windows   []WindowChoice `yaml:"windows"`
	Service   map[string]Range `yaml:"service"`   // minutes per visit, by modality
	Frequency map[string]Range `yaml:"frequency"` // visits per week, by modality

	// SkillMix is the synthetic distribution of required skills. It is a
	// proxy, not measured demand composition.
	SkillMix map[model.RoleCategory]float64 `yaml:"skillMix"`

	// DailyCapacityMin bounds the per-depot useful minutes per day, used
	// when the workforce data gives no better estimate.
	DailyCapacityMin Range `yaml:"dailyCapacityMin"`

	EnforceSkillCoverage bool `yaml:"enforceSkillCoverage"`
}

// DefaultConfig carries the generation parameters of the current
// home-care ordinance and the usual literature assumptions.
func DefaultConfig() Config {
	return Config{
		Patients: 50,
		Seed:     1,
		Scenario: "moderate",
		SpeedKmh: 25,
		JitterKm: 1.0,
		ShareAD2: 0.70,
		Windows: []WindowChoice{
			{Name: "morning", StartMin: 7 * 60, EndMin: 12 * 60, Share: 0.40},
			{Name: "afternoon", StartMin: 13 * 60, EndMin: 18 * 60, Share: 0.35},
			{Name: "full-day", StartMin: 7 * 60, EndMin: 18 * 60, Share: 0.25},
		},
		Service: map[string]Range{
			"AD2": {Min: 30, Max: 60},
			"AD3": {Min: 45, Max: 90},
		},
		Frequency: map[string]Range{
			"AD2": {Min: 1, Max: 3},
			"AD3": {Min: 5, Max: 7},
		},
		SkillMix: map[model.RoleCategory]float64{
			model.Nurse:             0.35,
			model.NursingTechnician: 0.30,
			model.Physiotherapist:   0.20,
			model.Physician:         0.15,
		},
		DailyCapacityMin:     Range{Min: 360, Max: 480},
		EnforceSkillCoverage: true,
	}
}

// Validate rejects configurations that cannot produce a coherent
// instance. All failures here are fatal before any output is written.
func (c Config) Validate() error {
	if c.Patients <= 0 {
		return fmt.Errorf("patients must be positive, got %d", c.Patients)
	}
	if c.MaxDepots < 0 {
		return fmt.Errorf("maxDepots must be non-negative, got %d", c.MaxDepots)
	}
	if c.SpeedKmh <= 0 {
		return fmt.Errorf("speedKmh must be positive, got %.2f", c.SpeedKmh)
	}
	if c.ShareAD2 < 0 || c.ShareAD2 > 1 {
		return fmt.Errorf("shareAD2 %.2f out of [0,1]", c.ShareAD2)
	}
	if len(c.Windows) == 0 {
		return fmt.Errorf("no visit windows configured")
	}
	var shareSum float64
	for _, w := range c.Windows {
		if w.EndMin <= w.StartMin {
			return fmt.Errorf("window %q ends before it starts", w.Name)
		}
		shareSum += w.Share
	}
	if shareSum < 0.999 || shareSum > 1.001 {
		return fmt.Errorf("window shares sum to %.3f, want 1", shareSum)
	}
	maxService := 0
	for _, modality := range []string{"AD2", "AD3"} {
		svc, ok := c.Service[modality]
		if !ok || !svc.valid() {
			return fmt.Errorf("missing or invalid service range for %s", modality)
		}
		if svc.Max > maxService {
			maxService = svc.Max
		}
		freq, ok := c.Frequency[modality]
		if !ok || !freq.valid() || freq.Min < 1 {
			return fmt.Errorf("missing or invalid visit frequency for %s", modality)
		}
	}
	// every window must fit the longest possible visit
	for _, w := range c.Windows {
		if w.EndMin-w.StartMin < maxService {
			return fmt.Errorf("window %q (%d min) cannot fit a %d min visit", w.Name, w.EndMin-w.StartMin, maxService)
		}
	}
	if len(c.SkillMix) == 0 {
		return fmt.Errorf("no skill mix configured")
	}
	var mixSum float64
	for cat, share := range c.SkillMix {
		if share < 0 {
			return fmt.Errorf("negative skill share for %s", cat)
		}
		mixSum += share
	}
	if mixSum <= 0 {
		return fmt.Errorf("skill mix has zero total weight")
	}
	if !c.DailyCapacityMin.valid() || c.DailyCapacityMin.Min == 0 {
		return fmt.Errorf("invalid daily capacity range")
	}
	return nil
}

// skillCategories returns the skill-mix categories in deterministic order.
func (c Config) skillCategories() []model.RoleCategory {
	cats := make([]model.RoleCategory, 0, len(c.SkillMix))
	for cat := range c.SkillMix {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// BuiltinPresets are the standard small/medium/large instance set.
func BuiltinPresets() []Config {
	mk := func(name string, patients, depots int, seed int64) Config {
		cfg := DefaultConfig()
		cfg.Name = name
		cfg.Patients = patients
		cfg.MaxDepots = depots
		cfg.Seed = seed
		return cfg
	}
	return []Config{
		mk("small_10", 10, 1, 42),
		mk("small_20", 20, 2, 123),
		mk("medium_50", 50, 3, 456),
		mk("medium_100", 100, 5, 789),
		mk("large_200", 200, 8, 1000),
		mk("large_500", 500, 15, 2000),
	}
}

// LoadPresets reads a preset list from YAML. Fields omitted in a preset
// fall back to the defaults.
func LoadPresets(path string) ([]Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	var partial []map[string]any
	if err := yaml.Unmarshal(raw, &partial); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	// re-marshal each entry over a default base so partial presets work
	presets := make([]Config, 0, len(partial))
	for i, entry := range partial {
		cfg := DefaultConfig()
		buf, err := yaml.Marshal(entry)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("presets %s entry %d: %w", path, i, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("presets %s entry %d: %w", path, i, err)
		}
		presets = append(presets, cfg)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("presets %s: no entries", path)
	}
	return presets, nil
}
