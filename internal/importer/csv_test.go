package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReaderParse(t *testing.T) {
	input := `date,description,amount,account_id
2025-06-01,NETFLIX.COM,12.99,checking-1
2025-06-15,Coffee at Starbucks,-5.75,checking-1
`

	reader := NewCSVReader(slog.Default())
	txns, err := reader.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "NETFLIX.COM", txns[0].Description)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.InDelta(t, 12.99, txns[0].Amount, 0.001)
	assert.Equal(t, "checking-1", txns[0].AccountID)
	assert.NotEmpty(t, txns[0].Hash)

	// Negative amounts are normalized to positive charges.
	assert.InDelta(t, 5.75, txns[1].Amount, 0.001)
}

func TestCSVReaderUSDates(t *testing.T) {
	input := `date,description,amount
06/01/2025,SPOTIFY USA,10.99
`

	reader := NewCSVReader(nil)
	txns, err := reader.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestCSVReaderSkipsBadRows(t *testing.T) {
	input := `date,description,amount
2025-06-01,VALID ROW,10.00
not-a-date,BAD DATE,5.00
2025-06-02,,3.00
`

	reader := NewCSVReader(nil)
	txns, err := reader.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "VALID ROW", txns[0].Description)
}

func TestCSVReaderExtraColumnsIgnored(t *testing.T) {
	input := `date,description,amount,category,notes
2025-06-01,COSTCO WHOLESALE,142.50,ignored,also ignored
`

	reader := NewCSVReader(nil)
	txns, err := reader.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "COSTCO WHOLESALE", txns[0].Description)
}

func TestCSVReaderMalformedFile(t *testing.T) {
	input := `date,description,amount
"unterminated quote,10.00
`

	reader := NewCSVReader(nil)
	_, err := reader.Parse(context.Background(), strings.NewReader(input))
	assert.Error(t, err)
}

func TestCSVReaderReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	content := "date,description,amount\n2025-06-01,TRADER JOES,54.20\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	reader := NewCSVReader(nil)
	txns, err := reader.Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "TRADER JOES", txns[0].Description)
}

func TestCSVReaderMissingFile(t *testing.T) {
	reader := NewCSVReader(nil)
	_, err := reader.Read(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestCSVReaderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewCSVReader(nil)
	_, err := reader.Parse(ctx, strings.NewReader("date,description,amount\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
