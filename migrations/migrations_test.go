package migrations_test

import (
	"github.com/burenotti/go_health_tracker/migrations"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

func TestFilesAreOrdered(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"010-later.sql":  {Data: []byte("SELECT 1;")},
		"002-second.sql": {Data: []byte("SELECT 1;")},
		"001-first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("not a migration")},
	}

	names, err := migrations.Files(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"001-first.sql", "002-second.sql", "010-later.sql"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestEmbeddedSchema(t *testing.T) {
	t.Parallel()
	names, err := migrations.Files(migrations.FS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no migrations embedded")
	}

	var schema strings.Builder
	for _, name := range names {
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		schema.Write(body)
	}
	for _, table := range []string{"profiles", "goals", "biometric_records", "foods", "exercises", "food_log_entries", "food_log_items", "exercise_log_entries", "exercise_sets", "streaks"} {
		if !strings.Contains(schema.String(), "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Fatalf("table %s is missing from the schema", table)
		}
	}
	for _, table := range []string{"food_log_entries", "exercise_log_entries"} {
		if !strings.Contains(schema.String(), "ALTER TABLE "+table+"\n    ADD COLUMN IF NOT EXISTS seq BIGSERIAL") {
			t.Fatalf("table %s has no insertion order column", table)
		}
	}
}
