package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T, content string) *RecordStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return NewRecordStore(path, zap.NewNop())
}

func fileLines(t *testing.T, s *RecordStore) []string {
	t.Helper()
	data, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("reading table: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestLoadAll_ParsesColumnsInAnyOrder(t *testing.T) {
	s := newTestStore(t, "country,filename,city,type\nFrance,paris.jpg,Paris,capital\nItaly,,Rome,\n")

	records, err := s.LoadAll()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].City != "Paris" || records[0].Country != "France" || records[0].Filename != "paris.jpg" || records[0].Type != "capital" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].City != "Rome" || records[1].Filename != "" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestLoadAll_SkipsIncompleteRows(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,\n,France,\nRome,,\nshort\nLyon,France,\n")

	records, err := s.LoadAll()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].City != "Paris" || records[1].City != "Lyon" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestLoadAll_MissingRequiredColumns(t *testing.T) {
	s := newTestStore(t, "name,filename\nParis,x.jpg\n")
	if _, err := s.LoadAll(); err == nil {
		t.Error("expected error for header without city/country")
	}
}

func TestSetFilename_FillsEmptyCell(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,\n")

	if err := s.SetFilename("Paris", "France", "paris-france-123.jpg"); err != nil {
		t.Fatalf("set filename: %v", err)
	}

	lines := fileLines(t, s)
	if lines[1] != "Paris,France,paris-france-123.jpg" {
		t.Errorf("unexpected row: %q", lines[1])
	}
}

func TestSetFilename_AppendsFilenameColumn(t *testing.T) {
	s := newTestStore(t, "city,country\nRome,Italy\nLyon,France\n")

	if err := s.SetFilename("Rome", "Italy", "rome-italy-9.jpg"); err != nil {
		t.Fatalf("set filename: %v", err)
	}

	lines := fileLines(t, s)
	if lines[0] != "city,country,filename" {
		t.Errorf("header not widened: %q", lines[0])
	}
	if lines[1] != "Rome,Italy,rome-italy-9.jpg" {
		t.Errorf("unexpected updated row: %q", lines[1])
	}
	// Untouched rows widen with an empty field.
	if lines[2] != "Lyon,France," {
		t.Errorf("unexpected widened row: %q", lines[2])
	}
}

func TestSetFilename_Idempotent(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,\nRome,Italy,\n")

	if err := s.SetFilename("Paris", "France", "first.jpg"); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := s.SetFilename("Paris", "France", "second.jpg"); err != nil {
		t.Fatalf("second update: %v", err)
	}

	lines := fileLines(t, s)
	if len(lines) != 3 {
		t.Fatalf("table duplicated: %d lines", len(lines))
	}
	if lines[1] != "Paris,France,second.jpg" {
		t.Errorf("expected latest write to win, got %q", lines[1])
	}
	if lines[2] != "Rome,Italy," {
		t.Errorf("other row changed: %q", lines[2])
	}
}

func TestSetFilename_AppendsMissingRow(t *testing.T) {
	s := newTestStore(t, "city,country,type,filename\nParis,France,capital,paris.jpg\n")

	if err := s.SetFilename("Oslo", "Norway", "oslo-norway-7.jpg"); err != nil {
		t.Fatalf("set filename: %v", err)
	}

	lines := fileLines(t, s)
	if len(lines) != 3 {
		t.Fatalf("expected exactly one appended row, got %d lines", len(lines))
	}
	// Pre-existing rows keep their position.
	if lines[1] != "Paris,France,capital,paris.jpg" {
		t.Errorf("existing row changed: %q", lines[1])
	}
	if lines[2] != "Oslo,Norway,,oslo-norway-7.jpg" {
		t.Errorf("unexpected appended row: %q", lines[2])
	}
}

func TestSetFilename_PrefersEmptyOverFilled(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,old.jpg\nParis,France,\n")

	if err := s.SetFilename("Paris", "France", "new.jpg"); err != nil {
		t.Fatalf("set filename: %v", err)
	}

	lines := fileLines(t, s)
	if lines[1] != "Paris,France,old.jpg" {
		t.Errorf("filled row should be untouched: %q", lines[1])
	}
	if lines[2] != "Paris,France,new.jpg" {
		t.Errorf("empty row should be filled: %q", lines[2])
	}
}

func TestSetFilename_OverwritesFirstFilledMatch(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,a.jpg\nParis,France,b.jpg\n")

	if err := s.SetFilename("Paris", "France", "c.jpg"); err != nil {
		t.Fatalf("set filename: %v", err)
	}

	lines := fileLines(t, s)
	if lines[1] != "Paris,France,c.jpg" {
		t.Errorf("first match should be overwritten: %q", lines[1])
	}
	if lines[2] != "Paris,France,b.jpg" {
		t.Errorf("second match should be untouched: %q", lines[2])
	}
}

func TestSetFilename_RejectsEmptyKey(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,\n")
	if err := s.SetFilename("", "France", "x.jpg"); err == nil {
		t.Error("expected error for empty city")
	}
	if err := s.SetFilename("Paris", "France", ""); err == nil {
		t.Error("expected error for empty filename")
	}
}

func TestSetFilename_MissingFile(t *testing.T) {
	s := NewRecordStore(filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())
	if err := s.SetFilename("Paris", "France", "x.jpg"); err == nil {
		t.Error("expected I/O error for missing table")
	}
}

func TestListUnassigned(t *testing.T) {
	s := newTestStore(t, "city,country,filename\nParis,France,done.jpg\nRome,Italy,\n")

	pending, err := s.ListUnassigned()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(pending) != 1 || pending[0].City != "Rome" {
		t.Errorf("unexpected pending records: %+v", pending)
	}
}
