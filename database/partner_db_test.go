package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrolhs/egressolink/matching"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "ref.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReplacePartnersCountsDistinctRows(t *testing.T) {
	db := openTestDB(t)

	records := []matching.PartnerRecord{
		{Fragment: "456789", Name: "MARIA SILVA", BasicCNPJ: "11222333", AssociationDate: "2020-01-01"},
		{Fragment: "456789", Name: "MARIA SILVA", BasicCNPJ: "11222333", AssociationDate: "2020-01-01"},
		{Fragment: "982247", Name: "JOAO SOUZA", BasicCNPJ: "44555666", AssociationDate: "2021-06-01"},
		{Fragment: "", Name: "SEM FRAGMENTO", BasicCNPJ: "77888999", AssociationDate: ""},
	}

	inserted, err := ReplacePartners(db, records)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted, "duplicate and fragmentless rows do not count")

	count, err := CountPartners(db)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReplacePartnerNamesCountsDistinctRows(t *testing.T) {
	db := openTestDB(t)

	inserted, err := ReplacePartnerNames(db, []string{"MARIA SILVA", "MARIA SILVA", "JOAO SOUZA", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	names, err := ListPartnerNames(db, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"JOAO SOUZA", "MARIA SILVA"}, names)
}
