package database

import (
	"database/sql"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// InitDB opens the raw SQLite handle used for the bulk reference tables
// (partners, partner_names, companies). These tables can run to tens of
// millions of rows, so they stay on plain database/sql with batched inserts
// instead of GORM.
func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable write-ahead logging for better concurrency
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		log.Printf("warning: failed to set WAL mode: %v", err)
	}

	sqlStmt := `
	CREATE TABLE IF NOT EXISTS partners (
		fragment TEXT NOT NULL,
		name TEXT NOT NULL,
		basic_cnpj TEXT NOT NULL,
		association_date TEXT NOT NULL DEFAULT '',
		UNIQUE(fragment, name, basic_cnpj, association_date)
	);
	CREATE INDEX IF NOT EXISTS idx_partners_fragment ON partners(fragment);

	CREATE TABLE IF NOT EXISTS partner_names (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS companies (
		basic_cnpj TEXT PRIMARY KEY,
		registration_date TEXT NOT NULL DEFAULT ''
	);
	`
	_, err = db.Exec(sqlStmt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reference tables: %w", err)
	}

	log.Println("reference database initialized successfully at", dataSourceName)
	return db, nil
}
