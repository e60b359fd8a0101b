package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
	_ "modernc.org/sqlite"
)

// Connect opens the file-backed report store. SQLite serializes writers on
// its own; the single connection keeps busy-timeout handling predictable.
func Connect(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Errorf("Failed to open the database at %s: %v", dbPath, err)
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		log.Errorf("Failed to ping the database at %s: %v", dbPath, err)
		return nil, err
	}
	log.Info("Established db connection.")
	return db, nil
}
