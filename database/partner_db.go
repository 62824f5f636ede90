package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pedrolhs/egressolink/matching"
)

// partnerInsertBatch bounds rows per INSERT statement; SQLite limits bound
// parameters per statement.
const partnerInsertBatch = 200

// ReplacePartners clears the partners table and bulk-inserts the given
// records inside one transaction. Records with an empty fragment are skipped;
// they cannot participate in the fragment join.
func ReplacePartners(db *sql.DB, records []matching.PartnerRecord) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin partner replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM partners"); err != nil {
		return 0, fmt.Errorf("failed to clear partners table: %w", err)
	}

	inserted := 0
	for start := 0; start < len(records); start += partnerInsertBatch {
		end := start + partnerInsertBatch
		if end > len(records) {
			end = len(records)
		}

		builder := psql.Insert("partners").
			Columns("fragment", "name", "basic_cnpj", "association_date").
			Suffix("ON CONFLICT DO NOTHING")
		batched := 0
		for _, rec := range records[start:end] {
			if rec.Fragment == "" {
				continue
			}
			builder = builder.Values(rec.Fragment, rec.Name, rec.BasicCNPJ, rec.AssociationDate)
			batched++
		}
		if batched == 0 {
			continue
		}

		sqlStr, args, err := builder.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build partner insert: %w", err)
		}
		res, err := tx.Exec(sqlStr, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert partner batch: %w", err)
		}
		// ON CONFLICT DO NOTHING swallows duplicates, so count what landed.
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read inserted partner count: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit partner replace: %w", err)
	}
	return inserted, nil
}

// ReplacePartnerNames clears and refills the name-only reference table used
// by the fallback matching path.
func ReplacePartnerNames(db *sql.DB, names []string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin partner name replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM partner_names"); err != nil {
		return 0, fmt.Errorf("failed to clear partner_names table: %w", err)
	}

	inserted := 0
	for start := 0; start < len(names); start += partnerInsertBatch {
		end := start + partnerInsertBatch
		if end > len(names) {
			end = len(names)
		}

		builder := psql.Insert("partner_names").Columns("name").Suffix("ON CONFLICT DO NOTHING")
		batched := 0
		for _, name := range names[start:end] {
			if name == "" {
				continue
			}
			builder = builder.Values(name)
			batched++
		}
		if batched == 0 {
			continue
		}

		sqlStr, args, err := builder.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build partner name insert: %w", err)
		}
		res, err := tx.Exec(sqlStr, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert partner name batch: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read inserted partner name count: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit partner name replace: %w", err)
	}
	return inserted, nil
}

// AllPartnerRecords loads the full partners table, used to build the
// in-memory fragment index for normal-sized reference sets.
func AllPartnerRecords(db *sql.DB) ([]matching.PartnerRecord, error) {
	sqlStr, args, err := psql.Select("fragment", "name", "basic_cnpj", "association_date").
		From("partners").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build partner select: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()

	var records []matching.PartnerRecord
	for rows.Next() {
		var rec matching.PartnerRecord
		if err := rows.Scan(&rec.Fragment, &rec.Name, &rec.BasicCNPJ, &rec.AssociationDate); err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListPartnerNames returns up to limit names from the fallback reference
// table, sorted so the bounded scan is deterministic across runs.
func ListPartnerNames(db *sql.DB, limit int) ([]string, error) {
	builder := psql.Select("name").From("partner_names").OrderBy("name ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build partner name select: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan partner name row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountPartners returns the number of partner reference rows.
func CountPartners(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM partners").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count partners: %w", err)
	}
	return count, nil
}

// PartnerCandidateSource is a matching.CandidateSource backed by the
// partners table. It trades per-fragment queries for not materializing the
// index, which keeps memory flat when the reference set runs to tens of
// millions of rows; the fragment column is indexed.
type PartnerCandidateSource struct {
	DB *sql.DB
}

// CandidatesByFragment implements matching.CandidateSource.
func (s *PartnerCandidateSource) CandidatesByFragment(fragment string) ([]matching.Candidate, error) {
	if fragment == "" {
		return nil, nil
	}

	sqlStr, args, err := psql.Select("name", "basic_cnpj", "association_date").
		From("partners").
		Where(sq.Eq{"fragment": fragment}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate select: %w", err)
	}

	rows, err := s.DB.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates for fragment %s: %w", fragment, err)
	}
	defer rows.Close()

	var candidates []matching.Candidate
	for rows.Next() {
		var cand matching.Candidate
		if err := rows.Scan(&cand.Name, &cand.BasicCNPJ, &cand.AssociationDate); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		candidates = append(candidates, cand)
	}
	return candidates, rows.Err()
}
