package cnes

import (
	"adcare/internal/model"
)

// Facility is a health facility with a usable geographic position.
type Facility struct {
	ID           string
	Name         string
	Municipality string
	StateCode    string
	Position     model.GeoPoint
}

// LoadFacilities streams the facility extract, keeping only rows in
// wantIDs (nil keeps all) with a parsable non-zero coordinate pair.
// Facilities with bad coordinates are reported and excluded; their teams
// will surface later as missing-facility issues.
func LoadFacilities(path string, wantIDs map[string]bool, report *model.QualityReport) (map[string]Facility, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer t.close()
	if err := t.require("CO_UNIDADE", "NU_LATITUDE", "NU_LONGITUDE"); err != nil {
		return nil, err
	}

	facilities := map[string]Facility{}
	err = t.eachRow(func(row []string) error {
		id := t.field(row, "CO_UNIDADE")
		if id == "" || (wantIDs != nil && !wantIDs[id]) {
			return nil
		}
		lat, errLat := parseDecimal(t.field(row, "NU_LATITUDE"))
		lng, errLng := parseDecimal(t.field(row, "NU_LONGITUDE"))
		if errLat != nil || errLng != nil || (lat == 0 && lng == 0) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			report.Add(model.QualityBadCoordinate, id, "lat=%q lng=%q", t.field(row, "NU_LATITUDE"), t.field(row, "NU_LONGITUDE"))
			return nil
		}
		facilities[id] = Facility{
			ID:           id,
			Name:         t.field(row, "NO_FANTASIA"),
			Municipality: t.field(row, "CO_MUNICIPIO_GESTOR"),
			StateCode:    t.field(row, "CO_ESTADO_GESTOR"),
			Position:     model.GeoPoint{Lat: lat, Lng: lng},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return facilities, nil
}
