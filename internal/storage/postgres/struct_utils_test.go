package postgres

import (
	"reflect"
	"sort"
	"testing"

	"atelier/internal/core/entity"
)

type testRow struct {
	entity.Reference

	Unit   string  `db:"unit"`
	Note   *string `db:"note"`
	Ignore string  `db:"-"`
	NoTag  string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testRow]()
	sort.Strings(cols)

	want := []string{
		"active", "code", "created_at", "deleted_at", "id", "name",
		"note", "unit", "updated_at", "version",
	}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns mismatch:\n got %v\nwant %v", cols, want)
	}
}

func TestStructToMap(t *testing.T) {
	row := testRow{
		Reference: entity.NewReference("M-001", "Silver"),
		Unit:      "g",
		Ignore:    "skipped",
		NoTag:     "skipped",
	}

	m := StructToMap(&row)

	if m["code"] != "M-001" || m["name"] != "Silver" || m["unit"] != "g" {
		t.Fatalf("unexpected map: %v", m)
	}
	if m["active"] != true {
		t.Fatalf("embedded field missing: %v", m)
	}
	if _, ok := m["-"]; ok {
		t.Fatal("ignored tag leaked into map")
	}
	if len(m) != 10 {
		t.Fatalf("expected 10 entries, got %d: %v", len(m), m)
	}
}

func TestStructToMap_NonStruct(t *testing.T) {
	if m := StructToMap(42); m != nil {
		t.Fatalf("expected nil for non-struct, got %v", m)
	}
}
