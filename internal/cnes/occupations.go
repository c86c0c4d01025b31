package cnes

// LoadOccupationTitles reads the occupation dictionary (code → title).
// Titles feed report presentation only; classification works on codes.
func LoadOccupationTitles(path string) (map[string]string, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer t.close()
	if err := t.require("CO_CBO", "DS_CBO"); err != nil {
		return nil, err
	}

	titles := map[string]string{}
	err = t.eachRow(func(row []string) error {
		if code := t.field(row, "CO_CBO"); code != "" {
			titles[code] = t.field(row, "DS_CBO")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}
