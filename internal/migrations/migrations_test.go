package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	for i := 0; i < 2; i++ {
		if err := Run(db); err != nil {
			t.Fatalf("Run() pass %d error = %v", i+1, err)
		}
	}

	version, err := GetCurrentVersion(db)
	if err != nil {
		t.Fatal(err)
	}
	if want := AllMigrations[len(AllMigrations)-1].Version; version != want {
		t.Errorf("version = %d, want %d", version, want)
	}

	if _, err := db.Exec("INSERT INTO local_storage (key, value, updated_at) VALUES ('k', 'v', CURRENT_TIMESTAMP)"); err != nil {
		t.Errorf("local_storage not usable: %v", err)
	}
}
