package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// InitSQLiteFile creates the expenses table in a sqlite file if it is
// missing, so the file is valid even before gorm runs its own migration.
// AUTOINCREMENT keeps ids monotonic and prevents rowid reuse after deletes.
func InitSQLiteFile(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS expenses (
			"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
			"date" TEXT,
			"amount" NUMERIC,
			"category" TEXT,
			"note" TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
