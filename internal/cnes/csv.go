package cnes

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CNES extracts are ';'-separated, Latin-1 encoded, and large relative to
// the handful of columns each loader needs, so rows are streamed and only
// wanted columns are touched.

type table struct {
	file *os.File
	r    *csv.Reader
	idx  map[string]int
	path string
}

func openTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open extract %s: %w", path, err)
	}
	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToUpper(name))] = i
	}
	return &table{file: f, r: r, idx: idx, path: path}, nil
}

func (t *table) close() { _ = t.file.Close() }

// require fails fast when an expected column is missing from the extract.
func (t *table) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.idx[c]; !ok {
			return fmt.Errorf("extract %s is missing column %s", t.path, c)
		}
	}
	return nil
}

func (t *table) field(row []string, col string) string {
	i, ok := t.idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// eachRow streams the remaining rows through fn, stopping on the first
// error fn returns.
func (t *table) eachRow(fn func(row []string) error) error {
	for {
		row, err := t.r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// parseDecimal accepts both dot and comma decimal separators, as the
// extracts mix them across vintages.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseIntField(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// some vintages export integer codes with a decimal suffix
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		s = s[:i]
	}
	return strconv.Atoi(s)
}
