package classify

import (
	"testing"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePrediction(category string, confidence float64) *model.Prediction {
	return &model.Prediction{
		Category:     category,
		Confidence:   confidence,
		Explanation:  "This expense was classified as '" + category + "' based on its description.",
		Source:       model.SourceModel,
		ModelVersion: 1,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestApplyRulesConfidentPredictionUntouched(t *testing.T) {
	pred := basePrediction("Food & Dining", 0.85)
	probs := map[string]float64{"Food & Dining": 0.85, "Housing": 0.1}

	out := ApplyRules(pred, "MORTGAGE PAYMENT", floatPtr(2400), probs)

	assert.Equal(t, "Food & Dining", out.Category)
	assert.Equal(t, 0.85, out.Confidence)
	assert.Equal(t, model.SourceModel, out.Source)
	assert.Equal(t, pred.Explanation, out.Explanation)
}

func TestApplyRulesLargeAmount(t *testing.T) {
	pred := basePrediction("Shopping", 0.3)
	probs := map[string]float64{"Shopping": 0.3, "Housing": 0.28, "Investments": 0.15}

	out := ApplyRules(pred, "WIRE TRANSFER 88321", floatPtr(2400), probs)

	assert.Equal(t, "Housing", out.Category)
	assert.InDelta(t, 0.28*1.2, out.Confidence, 1e-9)
	assert.Equal(t, model.SourceRule, out.Source)
	assert.Contains(t, out.Explanation, "large amount")
}

func TestApplyRulesLargeAmountRespectsCandidateOrder(t *testing.T) {
	pred := basePrediction("Shopping", 0.3)
	// Housing is below the probability floor; Investments qualifies next.
	probs := map[string]float64{"Shopping": 0.3, "Housing": 0.05, "Investments": 0.25}

	out := ApplyRules(pred, "TRANSFER 90210", floatPtr(5000), probs)

	assert.Equal(t, "Investments", out.Category)
	assert.Equal(t, model.SourceRule, out.Source)
}

func TestApplyRulesSmallAmount(t *testing.T) {
	pred := basePrediction("Shopping", 0.35)
	probs := map[string]float64{"Shopping": 0.35, "Food & Dining": 0.32}

	out := ApplyRules(pred, "SQ *VENDOR 42", floatPtr(8.50), probs)

	assert.Equal(t, "Food & Dining", out.Category)
	assert.Equal(t, model.SourceRule, out.Source)
	assert.Contains(t, out.Explanation, "small amount")
}

func TestApplyRulesPricePoint(t *testing.T) {
	pred := basePrediction("Shopping", 0.45)
	probs := map[string]float64{"Shopping": 0.45, "Entertainment": 0.25}

	out := ApplyRules(pred, "ACME DIGITAL SVC", floatPtr(15.99), probs)

	assert.Equal(t, "Entertainment", out.Category)
	assert.Equal(t, 0.6, out.Confidence)
	assert.Equal(t, model.SourceRule, out.Source)
	assert.Contains(t, out.Explanation, "subscription price point")
}

func TestApplyRulesPricePointSkippedAtHighConfidence(t *testing.T) {
	pred := basePrediction("Shopping", 0.75)
	probs := map[string]float64{"Shopping": 0.75, "Entertainment": 0.2}

	out := ApplyRules(pred, "ACME DIGITAL SVC", floatPtr(9.99), probs)

	assert.Equal(t, "Shopping", out.Category)
	assert.Equal(t, model.SourceModel, out.Source)
}

func TestApplyRulesKeyword(t *testing.T) {
	pred := basePrediction("Miscellaneous", 0.2)
	probs := map[string]float64{"Miscellaneous": 0.2}

	out := ApplyRules(pred, "CVS PHARMACY #1234", nil, probs)

	assert.Equal(t, "Healthcare", out.Category)
	assert.Equal(t, 0.7, out.Confidence)
	assert.Equal(t, model.SourceRule, out.Source)
	assert.Contains(t, out.Explanation, "keyword")
}

func TestApplyRulesKeywordMatchesWholeTokensOnly(t *testing.T) {
	// "vegas" contains "gas" as a substring; token matching must not treat
	// that as a fuel charge.
	pred := basePrediction("Travel", 0.3)
	probs := map[string]float64{"Travel": 0.3}

	out := ApplyRules(pred, "Las Vegas hotel room", nil, probs)

	assert.Equal(t, "Travel", out.Category)
	assert.Equal(t, 0.3, out.Confidence)
	assert.Equal(t, model.SourceModel, out.Source)
}

func TestApplyRulesKeywordMatchesNormalizedForms(t *testing.T) {
	// Inflected forms reduce to the same lemma as the keyword list.
	pred := basePrediction("Miscellaneous", 0.2)
	probs := map[string]float64{"Miscellaneous": 0.2}

	out := ApplyRules(pred, "AIRPORT PARKING GARAGE A4", nil, probs)

	assert.Equal(t, "Transportation", out.Category)
	assert.Equal(t, model.SourceRule, out.Source)
	assert.Contains(t, out.Explanation, "parking")
}

func TestApplyRulesKeywordMerchantToken(t *testing.T) {
	pred := basePrediction("Miscellaneous", 0.2)
	probs := map[string]float64{"Miscellaneous": 0.2}

	out := ApplyRules(pred, "UBER TRIP 4821", nil, probs)

	assert.Equal(t, "Transportation", out.Category)
	assert.Equal(t, 0.7, out.Confidence)
	assert.Equal(t, model.SourceRule, out.Source)
}

func TestApplyRulesKeywordPrecedence(t *testing.T) {
	// Health keywords outrank food keywords when both match.
	pred := basePrediction("Miscellaneous", 0.2)
	probs := map[string]float64{"Miscellaneous": 0.2}

	out := ApplyRules(pred, "HOSPITAL CAFE COFFEE", nil, probs)

	assert.Equal(t, "Healthcare", out.Category)
}

func TestApplyRulesAmountBeforePricePoint(t *testing.T) {
	// 12.99 is both under 15 and a price point; the amount rule fires first.
	pred := basePrediction("Shopping", 0.3)
	probs := map[string]float64{
		"Shopping":      0.3,
		"Food & Dining": 0.4,
		"Entertainment": 0.2,
	}

	out := ApplyRules(pred, "SOME VENDOR", floatPtr(12.99), probs)

	assert.Equal(t, "Food & Dining", out.Category)
}

func TestApplyRulesNilAmount(t *testing.T) {
	pred := basePrediction("Shopping", 0.45)
	probs := map[string]float64{"Shopping": 0.45, "Entertainment": 0.3}

	out := ApplyRules(pred, "SOME VENDOR", nil, probs)

	// Amount rules cannot fire; confidence 0.45 is above the keyword floor.
	assert.Equal(t, "Shopping", out.Category)
	assert.Equal(t, model.SourceModel, out.Source)
}

func TestApplyRulesDoesNotMutateInput(t *testing.T) {
	pred := basePrediction("Shopping", 0.3)
	pred.Alternatives = []model.Alternative{{Category: "Housing", Confidence: 0.28}}
	probs := map[string]float64{"Shopping": 0.3, "Housing": 0.28}

	out := ApplyRules(pred, "TRANSFER", floatPtr(2400), probs)
	require.Equal(t, "Housing", out.Category)

	assert.Equal(t, "Shopping", pred.Category)
	assert.Equal(t, model.SourceModel, pred.Source)
	assert.Len(t, pred.Alternatives, 1)
}
