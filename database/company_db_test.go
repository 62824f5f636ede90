package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCompaniesCountsWrittenRows(t *testing.T) {
	db := openTestDB(t)

	written, err := UpsertCompanies(db, []CompanyRow{
		{BasicCNPJ: "11222333", RegistrationDate: "2020-01-10"},
		{BasicCNPJ: "", RegistrationDate: "2020-01-10"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written, "empty CNPJ rows are skipped")

	// same key again still counts as one write, not a new row
	written, err = UpsertCompanies(db, []CompanyRow{
		{BasicCNPJ: "11222333", RegistrationDate: "2020-02-20"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	count, err := CountCompanies(db)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	dates, err := CompanyDatesByID(db, []string{"11222333"})
	require.NoError(t, err)
	assert.True(t, dates["11222333"].Equal(time.Date(2020, 2, 20, 0, 0, 0, 0, time.UTC)), "second upsert overwrote the date")
}
