package model

import "time"

// Correction is a user-asserted ground-truth label for a description. It
// overrides the model at prediction time and feeds the next retraining cycle.
// Corrections transition unused to applied exactly once and are never deleted
// by the core.
type Correction struct {
	CreatedAt              time.Time
	AppliedAt              *time.Time
	Amount                 *float64
	Confidence             *float64
	AppliedInVersion       *int
	Description            string
	PredictedCategory      string
	CorrectCategory        string
	TransactionRef         string
	UserID                 int64
	ID                     int64
	ModelVersionAtCreation int
	IsApplied              bool
}

// CorrectionStats summarizes the correction backlog.
type CorrectionStats struct {
	ByCategory map[string]CategoryCorrectionStats `json:"categories"`
	Total      int                                `json:"total"`
	Applied    int                                `json:"applied"`
	Unused     int                                `json:"unused"`
}

// CategoryCorrectionStats counts corrections for a single category.
type CategoryCorrectionStats struct {
	Total   int `json:"total"`
	Applied int `json:"applied"`
	Unused  int `json:"unused"`
}
