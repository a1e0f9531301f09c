package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date        time.Time `json:"date"`
	ID          string    `json:"id,omitempty"`
	Description string    `json:"description"`
	AccountID   string    `json:"account_id,omitempty"`
	Hash        string    `json:"hash,omitempty"`
	Amount      float64   `json:"amount"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// TrainingExample pairs a raw description with its ground-truth category.
// Amount is optional; examples whose description empties out after
// normalization are discarded before training.
type TrainingExample struct {
	Description string
	Category    string
	Amount      *float64
}
