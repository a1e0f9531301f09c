package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainCategories(t *testing.T) {
	main := MainCategories()

	assert.Len(t, main, 16)
	assert.Contains(t, main, "Food & Dining")
	assert.Contains(t, main, "Business Services")
	assert.Contains(t, main, FallbackCategory)
}

func TestSubcategories(t *testing.T) {
	subs := Subcategories("Food & Dining")
	require.NotEmpty(t, subs)
	assert.Contains(t, subs, "Groceries")

	assert.Nil(t, Subcategories("No Such Category"))
}

func TestMainCategoryFor(t *testing.T) {
	assert.Equal(t, "Food & Dining", MainCategoryFor("Groceries"))
	assert.Equal(t, "Transportation", MainCategoryFor("Gas & Fuel"))

	// Main category names and unknown names pass through.
	assert.Equal(t, "Shopping", MainCategoryFor("Shopping"))
	assert.Equal(t, "Mystery", MainCategoryFor("Mystery"))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Healthcare", false))
	assert.False(t, ValidCategory("Groceries", false))

	assert.True(t, ValidCategory("Groceries", true))
	assert.False(t, ValidCategory("Healthcare", true))

	assert.False(t, ValidCategory("Nonsense", false))
	assert.False(t, ValidCategory("Nonsense", true))
}

func TestActiveCategories(t *testing.T) {
	assert.Equal(t, MainCategories(), ActiveCategories(false))
	assert.Equal(t, AllSubcategories(), ActiveCategories(true))
	assert.Greater(t, len(ActiveCategories(true)), len(ActiveCategories(false)))
}

func TestTransactionGenerateHash(t *testing.T) {
	tx := Transaction{
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: "NETFLIX.COM",
		Amount:      12.99,
		AccountID:   "checking-1",
	}

	hash := tx.GenerateHash()
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, tx.GenerateHash())

	other := tx
	other.Amount = 13.99
	assert.NotEqual(t, hash, other.GenerateHash())

	// Time of day does not affect the hash, only the date.
	sameDay := tx
	sameDay.Date = tx.Date.Add(6 * time.Hour)
	assert.Equal(t, hash, sameDay.GenerateHash())
}
