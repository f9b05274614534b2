package pg

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
)

func TestMigrationFilesOrderAndFilter(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_catalog_up.sql":   {Data: []byte("b")},
		"0001_users_up.sql":     {Data: []byte("a")},
		"0001_users_down.sql":   {Data: []byte("x")},
		"0010_reviews_up.sql":   {Data: []byte("c")},
		"0002_catalog_down.sql": {Data: []byte("y")},
		"notes.md":              {Data: []byte("n")},
	}

	ups, err := migrationFiles(fsys, ".", "_up.sql")
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	want := []string{"0001_users_up.sql", "0002_catalog_up.sql", "0010_reviews_up.sql"}
	if len(ups) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(ups), len(want), ups)
	}
	for i := range want {
		if ups[i] != want[i] {
			t.Errorf("ups[%d] = %q, want %q", i, ups[i], want[i])
		}
	}

	downs, err := migrationFiles(fsys, ".", "_down.sql")
	if err != nil {
		t.Fatalf("migrationFiles down: %v", err)
	}
	if len(downs) != 2 {
		t.Fatalf("got %d down files, want 2: %v", len(downs), downs)
	}
}

func TestMigrationFilesSubdir(t *testing.T) {
	fsys := fstest.MapFS{
		"postgres/0001_users_up.sql": {Data: []byte("a")},
	}
	files, err := migrationFiles(fsys, "postgres", "_up.sql")
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "postgres/0001_users_up.sql" {
		t.Fatalf("got %v", files)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_ux"`)) {
		t.Error("unique constraint error not detected")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("unrelated error flagged as unique violation")
	}
	if isUniqueViolation(nil) {
		t.Error("nil flagged as unique violation")
	}
}

func TestNoRows(t *testing.T) {
	if !noRows(pgx.ErrNoRows) {
		t.Error("pgx.ErrNoRows not detected")
	}
	if noRows(errors.New("boom")) {
		t.Error("unrelated error detected as no rows")
	}
}
