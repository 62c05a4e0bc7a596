package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDB_Singleton(t *testing.T) {
	first, err := GetDB()
	require.NoError(t, err)

	second, err := GetDB()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestGetDB_Query(t *testing.T) {
	database, err := GetDB()
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow("SELECT 40 + 2").Scan(&n))
	assert.Equal(t, 42, n)
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'sleep_data.csv'", QuoteLiteral("sleep_data.csv"))
	assert.Equal(t, "'it''s.csv'", QuoteLiteral("it's.csv"))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"Screen Time (hrs)"`, QuoteIdent("Screen Time (hrs)"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}
