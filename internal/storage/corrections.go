package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
)

// amountMatchTolerance is the maximum absolute difference for two amounts to
// count as the same charge during override matching.
const amountMatchTolerance = 0.01

// descriptionKey normalizes a description for equality matching.
func descriptionKey(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// RecordCorrection persists a new correction. A new correction that carries
// the transaction reference of an existing unapplied correction is treated as
// a duplicate submission and the existing record is returned.
func (s *SQLiteStorage) RecordCorrection(ctx context.Context, c model.Correction) (*model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(c.Description, "description"); err != nil {
		return nil, err
	}
	if err := validateString(c.CorrectCategory, "correctCategory"); err != nil {
		return nil, err
	}

	if c.TransactionRef != "" {
		existing, err := s.findUnappliedByRef(ctx, c.TransactionRef)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (
			description, description_key, amount, predicted_category,
			correct_category, confidence, transaction_ref, user_id,
			model_version, is_applied, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		c.Description, descriptionKey(c.Description), c.Amount, c.PredictedCategory,
		c.CorrectCategory, c.Confidence, c.TransactionRef, c.UserID,
		c.ModelVersionAtCreation, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record correction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get correction id: %w", err)
	}

	saved := c
	saved.ID = id
	saved.CreatedAt = createdAt
	saved.IsApplied = false
	saved.AppliedAt = nil
	saved.AppliedInVersion = nil
	return &saved, nil
}

func (s *SQLiteStorage) findUnappliedByRef(ctx context.Context, ref string) (*model.Correction, error) {
	row := s.db.QueryRowContext(ctx, correctionSelect+`
		WHERE transaction_ref = ? AND is_applied = 0
		ORDER BY created_at DESC, id DESC LIMIT 1`, ref)

	c, err := scanCorrection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check for duplicate correction: %w", err)
	}
	return c, nil
}

// GetUnapplied returns corrections not yet consumed by retraining, oldest
// first. limit <= 0 returns all.
func (s *SQLiteStorage) GetUnapplied(ctx context.Context, limit int) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := correctionSelect + ` WHERE is_applied = 0 ORDER BY created_at ASC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryCorrections(ctx, query, args...)
}

// MarkApplied marks corrections as consumed by modelVersion. Either every
// listed correction transitions or none do.
func (s *SQLiteStorage) MarkApplied(ctx context.Context, ids []int64, modelVersion int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	appliedAt := time.Now().UTC()
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+3)
	args = append(args, appliedAt, modelVersion)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE corrections
		SET is_applied = 1, applied_at = ?, applied_in_version = ?
		WHERE id IN (%s) AND is_applied = 0`, placeholders), args...)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to mark corrections applied: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to count marked corrections: %w", err)
	}
	if affected != int64(len(ids)) {
		_ = tx.Rollback()
		return fmt.Errorf("%w: expected to mark %d corrections, matched %d",
			common.ErrNotFound, len(ids), affected)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit correction updates: %w", err)
	}
	return nil
}

// FindMatch returns the most recent correction whose description matches the
// given one after trimming and lowercasing. Amount filtering follows the
// CorrectionStore contract: a stored amount only disqualifies a match when
// both amounts are present and differ by more than a cent.
func (s *SQLiteStorage) FindMatch(ctx context.Context, description string, amount *float64) (*model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	key := descriptionKey(description)
	if key == "" {
		return nil, nil
	}

	candidates, err := s.queryCorrections(ctx, correctionSelect+`
		WHERE description_key = ?
		ORDER BY created_at DESC, id DESC`, key)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		if amount != nil && c.Amount != nil && math.Abs(*amount-*c.Amount) > amountMatchTolerance {
			continue
		}
		return c, nil
	}
	return nil, nil
}

// GetRecent returns the newest corrections, newest first.
func (s *SQLiteStorage) GetRecent(ctx context.Context, limit int) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	return s.queryCorrections(ctx, correctionSelect+`
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// Stats summarizes the correction backlog by category.
func (s *SQLiteStorage) Stats(ctx context.Context) (*model.CorrectionStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT correct_category,
		       COUNT(*),
		       SUM(CASE WHEN is_applied = 1 THEN 1 ELSE 0 END)
		FROM corrections
		GROUP BY correct_category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query correction stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &model.CorrectionStats{
		ByCategory: make(map[string]model.CategoryCorrectionStats),
	}
	for rows.Next() {
		var category string
		var total, applied int
		if err := rows.Scan(&category, &total, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan correction stats: %w", err)
		}
		stats.ByCategory[category] = model.CategoryCorrectionStats{
			Total:   total,
			Applied: applied,
			Unused:  total - applied,
		}
		stats.Total += total
		stats.Applied += applied
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate correction stats: %w", err)
	}

	stats.Unused = stats.Total - stats.Applied
	return stats, nil
}

const correctionSelect = `
	SELECT id, description, amount, predicted_category, correct_category,
	       confidence, transaction_ref, user_id, model_version, is_applied,
	       applied_at, applied_in_version, created_at
	FROM corrections`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCorrection(row rowScanner) (*model.Correction, error) {
	var c model.Correction
	var amount, confidence sql.NullFloat64
	var transactionRef sql.NullString
	var appliedAt sql.NullTime
	var appliedInVersion sql.NullInt64

	err := row.Scan(
		&c.ID, &c.Description, &amount, &c.PredictedCategory, &c.CorrectCategory,
		&confidence, &transactionRef, &c.UserID, &c.ModelVersionAtCreation,
		&c.IsApplied, &appliedAt, &appliedInVersion, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		c.Amount = &amount.Float64
	}
	if confidence.Valid {
		c.Confidence = &confidence.Float64
	}
	if transactionRef.Valid {
		c.TransactionRef = transactionRef.String
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		c.AppliedAt = &t
	}
	if appliedInVersion.Valid {
		v := int(appliedInVersion.Int64)
		c.AppliedInVersion = &v
	}

	return &c, nil
}

func (s *SQLiteStorage) queryCorrections(ctx context.Context, query string, args ...any) ([]model.Correction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}

	return corrections, nil
}
