package census

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"adcare/internal/model"
)

// Census 2022 aggregate variables used by the demand model.
const (
	colSector    = "CD_SETOR"
	colPopTotal  = "V01006" // residents, total
	colPop60to69 = "V01040" // 60-69 years, both sexes
	colPop70plus = "V01041" // 70+ years, both sexes
)

// municipalityDigits is how many leading sector-code digits identify the
// municipality.
const municipalityDigits = 7

// parseCount converts a population cell. The census withholds small
// strata behind a confidentiality sentinel ("X"); those count as zero,
// a known undercount bias that is reported but not corrected.
func parseCount(s string, sentinels *int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if sentinels != nil {
			*sentinels++
		}
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// LoadSectors streams the census demographic aggregate, keeping sectors
// in the region (municipality-code prefix; empty keeps all). Sentinel
// cells fold to zero and are tallied in the report.
func LoadSectors(path, region string, report *model.QualityReport) ([]model.CensusSector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open census extract %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, col := range []string{colSector, colPopTotal, colPop60to69, colPop70plus} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("census extract %s is missing column %s", path, col)
		}
	}
	field := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var sectors []model.CensusSector
	sentinels := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		id := strings.TrimSpace(field(row, colSector))
		if id == "" {
			report.Add(model.QualityMalformedRow, "", "census row without sector code")
			continue
		}
		if region != "" && !strings.HasPrefix(id, region) {
			continue
		}
		muni := id
		if len(muni) > municipalityDigits {
			muni = muni[:municipalityDigits]
		}
		sectors = append(sectors, model.CensusSector{
			ID:              id,
			Municipality:    muni,
			PopulationTotal: parseCount(field(row, colPopTotal), &sentinels),
			Pop60to69:       parseCount(field(row, colPop60to69), &sentinels),
			Pop70plus:       parseCount(field(row, colPop70plus), &sentinels),
		})
	}
	if sentinels > 0 {
		report.Counts["census_sentinel_zeroed"] += sentinels
	}
	return sectors, nil
}

// Geometry is the simplified sector geometry interface: the upstream
// shapefile pipeline exports centroids and bounding boxes to CSV.
type Geometry struct {
	Centroid model.GeoPoint
	BBox     *model.BoundingBox
}

// LoadGeometry reads the sector centroid/bbox export and returns it keyed
// by sector code. Degenerate boxes are dropped to centroid-only entries.
func LoadGeometry(path string, report *model.QualityReport) (map[string]Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geometry export %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	get := func(row []string, col string) (float64, bool) {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(row[i], ",", ".")), 64)
		return v, err == nil
	}

	out := map[string]Geometry{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		i, ok := idx[colSector]
		if !ok || i >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[i])
		lat, okLat := get(row, "LAT")
		lng, okLng := get(row, "LNG")
		if id == "" || !okLat || !okLng {
			report.Add(model.QualityBadGeometry, id, "unusable centroid")
			continue
		}
		g := Geometry{Centroid: model.GeoPoint{Lat: lat, Lng: lng}}
		minLat, ok1 := get(row, "MIN_LAT")
		minLng, ok2 := get(row, "MIN_LNG")
		maxLat, ok3 := get(row, "MAX_LAT")
		maxLng, ok4 := get(row, "MAX_LNG")
		if ok1 && ok2 && ok3 && ok4 {
			if maxLat > minLat && maxLng > minLng {
				g.BBox = &model.BoundingBox{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng}
			} else {
				report.Add(model.QualityBadGeometry, id, "degenerate bbox, keeping centroid")
			}
		}
		out[id] = g
	}
	return out, nil
}

// Attach joins geometry onto sectors in place.
func Attach(sectors []model.CensusSector, geoms map[string]Geometry) {
	for i := range sectors {
		if g, ok := geoms[sectors[i].ID]; ok {
			c := g.Centroid
			sectors[i].Centroid = &c
			sectors[i].BBox = g.BBox
		}
	}
}
