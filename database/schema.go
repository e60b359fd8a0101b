package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	sqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// extraColumns is the additive extension set of the reports table. New
// columns are appended here over time; InitSchema must tolerate running
// against a store that already has any of them.
var extraColumns = []struct {
	name string
	def  string
}{
	{"photo_filename", "TEXT"},
	{"postal_code", "TEXT"},
	{"neighborhood", "TEXT"},
	{"locality", "TEXT"},
	{"status", "TEXT DEFAULT 'New'"},
}

// InitSchema creates the reports table if it doesn't exist and applies the
// additive column migrations. Safe to call on every process start.
func InitSchema(db *sql.DB) error {
	log.Info("Initializing report store schema...")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		address TEXT,
		latitude REAL,
		longitude REAL,
		description TEXT
	)`

	if _, err := db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	for _, col := range extraColumns {
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE reports ADD COLUMN %s %s", col.name, col.def))
		if err != nil {
			if !isDuplicateColumn(err) {
				return fmt.Errorf("failed to add column %s to reports table: %w", col.name, err)
			}
			log.Infof("Column %s already exists in reports table", col.name)
			continue
		}
		log.Infof("Added column %s to reports table", col.name)
	}

	log.Info("Report store schema initialization completed")
	return nil
}

func isDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() != sqlite3lib.SQLITE_ERROR {
		return false
	}
	return strings.Contains(message, "duplicate column name")
}
