package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pedrolhs/egressolink/founders"
	"github.com/pedrolhs/egressolink/utils"
)

// CompanyRow is one company reference record: its basic CNPJ plus the
// registration/activity-start date as published (raw string form).
type CompanyRow struct {
	BasicCNPJ        string
	RegistrationDate string
}

// UpsertCompanies inserts or updates company reference rows. Unlike the
// partners table this one is merged rather than replaced: company extracts
// arrive filtered to the CNPJs seen in earlier runs and accumulate.
func UpsertCompanies(db *sql.DB, rows []CompanyRow) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin company upsert transaction: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for start := 0; start < len(rows); start += partnerInsertBatch {
		end := start + partnerInsertBatch
		if end > len(rows) {
			end = len(rows)
		}

		builder := psql.Insert("companies").
			Columns("basic_cnpj", "registration_date").
			Suffix("ON CONFLICT(basic_cnpj) DO UPDATE SET").
			Suffix("registration_date = excluded.registration_date")
		batched := 0
		for _, row := range rows[start:end] {
			if row.BasicCNPJ == "" {
				continue
			}
			builder = builder.Values(row.BasicCNPJ, row.RegistrationDate)
			batched++
		}
		if batched == 0 {
			continue
		}

		sqlStr, args, err := builder.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build company upsert: %w", err)
		}
		res, err := tx.Exec(sqlStr, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert company batch: %w", err)
		}
		// counts inserts and updates, both of which wrote a row
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read upserted company count: %w", err)
		}
		written += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit company upsert: %w", err)
	}
	return written, nil
}

// CompanyDatesByID loads registration dates for the given CNPJs into a
// founders.CompanyDateMap. Companies with unparseable or empty dates are
// omitted so founder inference skips them.
func CompanyDatesByID(db *sql.DB, basicCNPJs []string) (founders.CompanyDateMap, error) {
	dates := make(founders.CompanyDateMap, len(basicCNPJs))
	if len(basicCNPJs) == 0 {
		return dates, nil
	}

	for start := 0; start < len(basicCNPJs); start += partnerInsertBatch {
		end := start + partnerInsertBatch
		if end > len(basicCNPJs) {
			end = len(basicCNPJs)
		}

		sqlStr, args, err := psql.Select("basic_cnpj", "registration_date").
			From("companies").
			Where(sq.Eq{"basic_cnpj": basicCNPJs[start:end]}).ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build company date select: %w", err)
		}

		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query company dates: %w", err)
		}
		if err := scanCompanyDates(rows, dates); err != nil {
			return nil, err
		}
	}
	return dates, nil
}

func scanCompanyDates(rows *sql.Rows, dates map[string]time.Time) error {
	defer rows.Close()
	for rows.Next() {
		var cnpj, rawDate string
		if err := rows.Scan(&cnpj, &rawDate); err != nil {
			return fmt.Errorf("failed to scan company date row: %w", err)
		}
		if parsed, ok := utils.ParseFlexibleDate(rawDate); ok {
			dates[cnpj] = parsed
		}
	}
	return rows.Err()
}

// CountCompanies returns the number of company reference rows.
func CountCompanies(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM companies").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}
