package instance

import (
	"math/rand"

	"adcare/internal/census"
	"adcare/internal/geo"
	"adcare/internal/model"
)

// SamplePatients draws the configured number of synthetic patients,
// distributed across sectors proportionally to their weighted eligible
// population. The target count is met exactly; weights are relative.
func SamplePatients(sectors []model.CensusSector, cfg Config, scenario census.Scenario, rng *rand.Rand, report *model.QualityReport) []model.Patient {
	usable := make([]model.CensusSector, 0, len(sectors))
	weights := make([]float64, 0, len(sectors))
	for _, sec := range sectors {
		w := scenario.WeightedDemand(sec)
		if w <= 0 {
			report.Add(model.QualityEmptySector, sec.ID, "no weighted eligible population, skipped")
			continue
		}
		if sec.Centroid == nil && sec.BBox == nil {
			report.Add(model.QualityBadGeometry, sec.ID, "no usable geometry, skipped")
			continue
		}
		usable = append(usable, sec)
		weights = append(weights, w)
	}
	if len(usable) == 0 {
		return nil
	}

	counts := Apportion(weights, cfg.Patients)
	cats := cfg.skillCategories()

	patients := make([]model.Patient, 0, cfg.Patients)
	id := 1
	for i, sec := range usable {
		for n := 0; n < counts[i]; n++ {
			patients = append(patients, samplePatient(id, sec, cfg, cats, rng))
			id++
		}
	}
	return patients
}

func samplePatient(id int, sec model.CensusSector, cfg Config, cats []model.RoleCategory, rng *rand.Rand) model.Patient {
	var pos model.GeoPoint
	if sec.BBox != nil {
		pos = geo.SampleInBBox(rng, *sec.BBox)
	} else {
		pos = geo.SampleNear(rng, *sec.Centroid, cfg.JitterKm)
	}

	modality := "AD3"
	priority := 3
	if rng.Float64() < cfg.ShareAD2 {
		modality = "AD2"
		priority = 2
	}

	window := drawWindow(cfg.Windows, rng)
	service := drawRange(cfg.Service[modality], rng)
	frequency := drawRange(cfg.Frequency[modality], rng)

	return model.Patient{
		ID:            id,
		Position:      pos,
		SectorID:      sec.ID,
		Modality:      modality,
		Window:        window,
		ServiceMin:    service,
		VisitsPerWeek: frequency,
		RequiredSkill: drawSkill(cfg.SkillMix, cats, rng),
		Priority:      priority,
	}
}

func drawWindow(windows []WindowChoice, rng *rand.Rand) model.TimeWindow {
	r := rng.Float64()
	var cum float64
	for _, w := range windows {
		cum += w.Share
		if r < cum {
			return model.TimeWindow{StartMin: w.StartMin, EndMin: w.EndMin}
		}
	}
	last := windows[len(windows)-1]
	return model.TimeWindow{StartMin: last.StartMin, EndMin: last.EndMin}
}

func drawRange(r Range, rng *rand.Rand) int {
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// drawSkill picks a category from the mix; cats fixes the iteration
// order so the draw is reproducible.
func drawSkill(mix map[model.RoleCategory]float64, cats []model.RoleCategory, rng *rand.Rand) model.RoleCategory {
	var total float64
	for _, cat := range cats {
		total += mix[cat]
	}
	r := rng.Float64() * total
	var cum float64
	for _, cat := range cats {
		cum += mix[cat]
		if r < cum {
			return cat
		}
	}
	return cats[len(cats)-1]
}
