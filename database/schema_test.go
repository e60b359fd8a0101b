package database

import (
	"database/sql"
	"reflect"
	"sort"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// Each pooled connection would get its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableColumns(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("PRAGMA table_info(reports)")
	if err != nil {
		t.Fatalf("table_info: %v", err)
	}
	defer rows.Close()

	cols := []string{}
	for rows.Next() {
		var (
			cid        int
			name       string
			typ        string
			notnull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &defaultVal, &pk); err != nil {
			t.Fatalf("scan table_info: %v", err)
		}
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

func TestInitSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitSchema(db); err != nil {
		t.Fatalf("first InitSchema: %v", err)
	}
	first := tableColumns(t, db)

	want := []string{
		"address", "created_at", "description", "id", "latitude", "locality",
		"longitude", "neighborhood", "photo_filename", "postal_code", "status",
	}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("columns after first InitSchema: got %v, want %v", first, want)
	}

	for i := 0; i < 3; i++ {
		if err := InitSchema(db); err != nil {
			t.Fatalf("repeated InitSchema run %d: %v", i+1, err)
		}
	}
	if got := tableColumns(t, db); !reflect.DeepEqual(got, first) {
		t.Errorf("columns changed across runs: got %v, want %v", got, first)
	}
}

func TestInitSchemaUpgradesLegacyTable(t *testing.T) {
	db := openTestDB(t)

	// A store from before the extension columns existed.
	_, err := db.Exec(`CREATE TABLE reports(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		address TEXT,
		latitude REAL,
		longitude REAL,
		description TEXT
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO reports (created_at, address) VALUES ('2024-01-01 10:00:00', 'Old St 1')`); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	if err := InitSchema(db); err != nil {
		t.Fatalf("InitSchema on legacy table: %v", err)
	}

	var status string
	if err := db.QueryRow(`SELECT status FROM reports WHERE address = 'Old St 1'`).Scan(&status); err != nil {
		t.Fatalf("read migrated row: %v", err)
	}
	if status != "New" {
		t.Errorf("legacy row status: got %q, want %q", status, "New")
	}
}

func TestIsDuplicateColumn(t *testing.T) {
	db := openTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	_, err := db.Exec("ALTER TABLE reports ADD COLUMN status TEXT")
	if !isDuplicateColumn(err) {
		t.Errorf("expected duplicate column error to be recognized, got %v", err)
	}

	_, err = db.Exec("ALTER TABLE nonexistent ADD COLUMN status TEXT")
	if isDuplicateColumn(err) {
		t.Errorf("unrelated DDL error misclassified as duplicate column: %v", err)
	}
}
