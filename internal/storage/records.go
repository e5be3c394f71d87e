// Package storage handles data persistence: the CSV place table, downloaded
// image files, and the SQLite assignment audit log.
package storage

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/model"
)

// RecordStore reads and writes the flat comma-separated place table.
// The format is a plain delimited table: first line is a header naming at
// least city and country (in any column order), values carry no quoting or
// escaping, so fields must not contain commas. Every update rewrites the
// whole file. There is a single interactive operator, so no locking.
type RecordStore struct {
	path   string
	logger *zap.Logger
}

// NewRecordStore creates a store for the table at path.
func NewRecordStore(path string, logger *zap.Logger) *RecordStore {
	return &RecordStore{path: path, logger: logger}
}

// table is the raw parsed file: header names plus row cells, with unknown
// columns preserved positionally.
type table struct {
	header []string
	rows   [][]string
}

// columnIndex returns the position of a header column, -1 when absent.
// Header names are matched trimmed and lowercased.
func (t *table) columnIndex(name string) int {
	for i, h := range t.header {
		if strings.ToLower(strings.TrimSpace(h)) == name {
			return i
		}
	}
	return -1
}

// cell returns the trimmed value of row[idx], empty when the row is shorter
// than the header (rows written before a column was added).
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// LoadAll parses the table into records. Rows with an empty city or country
// are dropped silently; rows too short to carry both required fields are
// skipped rather than failing the whole load.
func (s *RecordStore) LoadAll() ([]model.Record, error) {
	t, err := s.read()
	if err != nil {
		return nil, err
	}

	cityIdx := t.columnIndex("city")
	countryIdx := t.columnIndex("country")
	if cityIdx < 0 || countryIdx < 0 {
		return nil, fmt.Errorf("record table %s: header must name city and country columns", s.path)
	}
	typeIdx := t.columnIndex("type")
	fileIdx := t.columnIndex("filename")

	records := make([]model.Record, 0, len(t.rows))
	for i, row := range t.rows {
		city := cell(row, cityIdx)
		country := cell(row, countryIdx)
		if city == "" || country == "" {
			s.logger.Debug("dropping incomplete row",
				zap.Int("line", i+2),
				zap.Strings("fields", row),
			)
			continue
		}
		records = append(records, model.Record{
			City:     city,
			Country:  country,
			Type:     cell(row, typeIdx),
			Filename: cell(row, fileIdx),
		})
	}
	return records, nil
}

// ListUnassigned returns the records that still lack an image filename.
func (s *RecordStore) ListUnassigned() ([]model.Record, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	pending := make([]model.Record, 0, len(all))
	for _, r := range all {
		if !r.Assigned() {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// rowMatch classifies the outcome of looking up an update key in the table.
type rowMatch int

const (
	matchNone   rowMatch = iota // no row has this (city, country)
	matchEmpty                  // a matching row exists with an empty filename
	matchFilled                 // matching rows exist but all have filenames
)

// findRow locates the row to update for (city, country), preferring a match
// whose filename cell is still empty. When every match is already filled it
// returns the first match; overwriting it is the last resort.
func findRow(t *table, cityIdx, countryIdx, fileIdx int, city, country string) (int, rowMatch) {
	firstFilled := -1
	for i, row := range t.rows {
		if cell(row, cityIdx) != city || cell(row, countryIdx) != country {
			continue
		}
		if cell(row, fileIdx) == "" {
			return i, matchEmpty
		}
		if firstFilled < 0 {
			firstFilled = i
		}
	}
	if firstFilled >= 0 {
		return firstFilled, matchFilled
	}
	return -1, matchNone
}

// SetFilename records the assigned image filename for the row keyed by
// (city, country), matched case-sensitively on trimmed values. Decision
// table: fill the first matching row with an empty filename; else overwrite
// the first matching filled row; else append a fresh row. A missing filename
// column is appended to the header and all rows widen accordingly. The whole
// file is rewritten on success.
func (s *RecordStore) SetFilename(city, country, filename string) error {
	city = strings.TrimSpace(city)
	country = strings.TrimSpace(country)
	if city == "" || country == "" || filename == "" {
		return fmt.Errorf("set filename: city, country and filename are required")
	}

	t, err := s.read()
	if err != nil {
		return err
	}

	cityIdx := t.columnIndex("city")
	countryIdx := t.columnIndex("country")
	if cityIdx < 0 || countryIdx < 0 {
		return fmt.Errorf("record table %s: header must name city and country columns", s.path)
	}

	fileIdx := t.columnIndex("filename")
	if fileIdx < 0 {
		t.header = append(t.header, "filename")
		fileIdx = len(t.header) - 1
	}

	idx, outcome := findRow(t, cityIdx, countryIdx, fileIdx, city, country)
	switch outcome {
	case matchEmpty, matchFilled:
		setCell(&t.rows[idx], fileIdx, filename)
		if outcome == matchFilled {
			s.logger.Warn("overwriting existing filename",
				zap.String("city", city),
				zap.String("country", country),
				zap.String("filename", filename),
			)
		}
	case matchNone:
		row := make([]string, len(t.header))
		row[cityIdx] = city
		row[countryIdx] = country
		row[fileIdx] = filename
		t.rows = append(t.rows, row)
		s.logger.Warn("no matching row, appending",
			zap.String("city", city),
			zap.String("country", country),
		)
	}

	return s.write(t)
}

// setCell assigns row[idx], widening the row with empty fields first if it
// is shorter than the target column.
func setCell(row *[]string, idx int, value string) {
	for len(*row) <= idx {
		*row = append(*row, "")
	}
	(*row)[idx] = value
}

func (s *RecordStore) read() (*table, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading record table: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	// Drop a trailing blank line from the final newline.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("record table %s is empty", s.path)
	}

	t := &table{header: strings.Split(lines[0], ",")}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t.rows = append(t.rows, strings.Split(line, ","))
	}
	return t, nil
}

// write serializes the table and overwrites the file. Rows shorter than the
// header are padded so every line has the full column count.
func (s *RecordStore) write(t *table) error {
	var b strings.Builder
	b.WriteString(strings.Join(t.header, ","))
	b.WriteByte('\n')
	for _, row := range t.rows {
		for len(row) < len(t.header) {
			row = append(row, "")
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	if err := os.WriteFile(s.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing record table: %w", err)
	}
	return nil
}
