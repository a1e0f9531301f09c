package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/gocarina/gocsv"
)

// csvDateLayouts lists accepted date formats, tried in order.
var csvDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
}

// csvDate parses either ISO or US-style dates.
type csvDate struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller. Unparseable dates leave the
// zero value so the row can be skipped instead of failing the whole file.
func (d *csvDate) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	for _, layout := range csvDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			d.Time = parsed
			break
		}
	}
	return nil
}

// csvRow is the expected export shape: a header row with date, description
// and amount columns. Extra columns are ignored.
type csvRow struct {
	Date        csvDate `csv:"date"`
	Description string  `csv:"description"`
	Amount      float64 `csv:"amount"`
	AccountID   string  `csv:"account_id"`
	ID          string  `csv:"id"`
}

// CSVReader parses CSV transaction exports.
type CSVReader struct {
	logger *slog.Logger
}

// NewCSVReader creates a CSV reader.
func NewCSVReader(logger *slog.Logger) *CSVReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVReader{logger: logger}
}

// Read parses the CSV file at path.
func (r *CSVReader) Read(ctx context.Context, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.Parse(ctx, f)
}

// Parse parses CSV content from a reader. Rows missing a description or a
// parseable date are skipped rather than failing the whole import.
func (r *CSVReader) Parse(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []*csvRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}

	transactions := make([]model.Transaction, 0, len(rows))
	var skipped int
	for _, row := range rows {
		description := strings.TrimSpace(row.Description)
		if description == "" || row.Date.IsZero() {
			skipped++
			continue
		}

		amount := row.Amount
		if amount < 0 {
			amount = -amount
		}

		tx := model.Transaction{
			ID:          row.ID,
			Date:        row.Date.Time,
			Description: description,
			Amount:      amount,
			AccountID:   row.AccountID,
		}
		tx.Hash = tx.GenerateHash()
		transactions = append(transactions, tx)
	}

	r.logger.Info("parsed CSV file",
		"total_transactions", len(transactions),
		"skipped_rows", skipped)

	return transactions, nil
}
