package classify

import (
	"fmt"
	"math"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/nlp"
)

// Rule-layer confidence thresholds. A rule only considers predictions below
// its threshold; confident model output is never second-guessed.
const (
	amountRuleThreshold     = 0.5
	pricePointRuleThreshold = 0.6
	keywordRuleThreshold    = 0.4
)

const (
	largeAmountFloor = 1000.0
	smallAmountCeil  = 15.0
)

// subscriptionPricePoints are common recurring-service price points. Amounts
// within a cent of one of these suggest a subscription charge.
var subscriptionPricePoints = []float64{9.99, 10.99, 12.99, 14.99, 15.99, 19.99}

// largeAmountCategories and smallAmountCategories are checked in order; the
// first with enough model probability wins.
var (
	largeAmountCategories = []string{"Housing", "Investments", "Education"}
	smallAmountCategories = []string{"Food & Dining", "Transportation"}
	pricePointCategories  = []string{"Entertainment", "Utilities"}
)

// keywordNormalizer tokenizes descriptions for the keyword rule with the same
// pipeline the classifier uses, so matching is token-exact rather than
// substring ("gas" must not fire on "vegas").
var keywordNormalizer = nlp.NewNormalizer()

// keywordRule matches normalized description tokens against a keyword set.
// Keywords are stored in lemma form so they compare against the same
// normalization the description goes through.
type keywordRule struct {
	category string
	lemmas   []string
	display  map[string]string
}

// Keyword sets for the last-resort keyword rule, checked in order.
var keywordRules = buildKeywordRules()

func buildKeywordRules() []keywordRule {
	raw := []struct {
		category string
		words    []string
	}{
		{"Healthcare", []string{"pharmacy", "cvs", "walgreens", "clinic", "medical", "dental", "doctor", "hospital"}},
		{"Food & Dining", []string{"restaurant", "cafe", "coffee", "pizza", "burger", "grill", "bakery", "deli"}},
		{"Transportation", []string{"uber", "lyft", "taxi", "parking", "gas", "fuel", "transit", "toll"}},
	}

	rules := make([]keywordRule, 0, len(raw))
	for _, r := range raw {
		rule := keywordRule{category: r.category, display: make(map[string]string, len(r.words))}
		for _, word := range r.words {
			lemma := word
			if toks := keywordNormalizer.Tokens(word); len(toks) == 1 {
				lemma = toks[0]
			}
			if _, dup := rule.display[lemma]; dup {
				continue
			}
			rule.lemmas = append(rule.lemmas, lemma)
			rule.display[lemma] = word
		}
		rules = append(rules, rule)
	}
	return rules
}

// ApplyRules adjusts a low-confidence model prediction using amount-based,
// price-point and keyword heuristics, in that fixed precedence. probs is the
// full per-category model distribution; amount may be nil. When a rule fires
// the prediction's source becomes RULE_ADJUSTED and an audit clause is
// appended to the explanation. The input prediction is not modified.
func ApplyRules(pred *model.Prediction, description string, amount *float64, probs map[string]float64) *model.Prediction {
	adjusted := *pred
	adjusted.Alternatives = append([]model.Alternative(nil), pred.Alternatives...)

	if amount != nil && adjusted.Confidence < amountRuleThreshold {
		if applyAmountRule(&adjusted, *amount, probs) {
			return &adjusted
		}
	}

	if amount != nil && adjusted.Confidence < pricePointRuleThreshold {
		if applyPricePointRule(&adjusted, *amount, probs) {
			return &adjusted
		}
	}

	if adjusted.Confidence < keywordRuleThreshold {
		if applyKeywordRule(&adjusted, description) {
			return &adjusted
		}
	}

	return &adjusted
}

func applyAmountRule(pred *model.Prediction, amount float64, probs map[string]float64) bool {
	var candidates []string
	var clause string
	switch {
	case amount > largeAmountFloor:
		candidates = largeAmountCategories
		clause = fmt.Sprintf("The large amount ($%.2f) supports this category.", amount)
	case amount < smallAmountCeil:
		candidates = smallAmountCategories
		clause = fmt.Sprintf("The small amount ($%.2f) supports this category.", amount)
	default:
		return false
	}

	for _, category := range candidates {
		p := probs[category]
		if p <= 0.1 {
			continue
		}
		boosted := math.Min(1, p*1.2)
		if boosted <= pred.Confidence {
			continue
		}
		pred.Category = category
		pred.Confidence = boosted
		pred.Source = model.SourceRule
		pred.Explanation = appendClause(pred.Explanation, clause)
		return true
	}
	return false
}

func applyPricePointRule(pred *model.Prediction, amount float64, probs map[string]float64) bool {
	matched := false
	for _, p := range subscriptionPricePoints {
		if math.Abs(amount-p) < 0.01 {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, category := range pricePointCategories {
		if probs[category] <= 0.05 {
			continue
		}
		pred.Category = category
		if pred.Confidence < 0.6 {
			pred.Confidence = 0.6
		}
		pred.Source = model.SourceRule
		pred.Explanation = appendClause(pred.Explanation,
			fmt.Sprintf("The amount $%.2f matches a common subscription price point.", amount))
		return true
	}
	return false
}

func applyKeywordRule(pred *model.Prediction, description string) bool {
	tokens := keywordNormalizer.Tokens(description)
	if len(tokens) == 0 {
		return false
	}
	present := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}

	for _, rule := range keywordRules {
		for _, lemma := range rule.lemmas {
			if _, ok := present[lemma]; !ok {
				continue
			}
			pred.Category = rule.category
			if pred.Confidence < 0.7 {
				pred.Confidence = 0.7
			}
			pred.Source = model.SourceRule
			pred.Explanation = appendClause(pred.Explanation,
				fmt.Sprintf("The description contains the keyword '%s'.", rule.display[lemma]))
			return true
		}
	}
	return false
}

func appendClause(explanation, clause string) string {
	if explanation == "" {
		return clause
	}
	return explanation + " " + clause
}
