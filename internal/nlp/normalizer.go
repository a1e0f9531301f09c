// Package nlp provides text normalization for transaction descriptions.
package nlp

import (
	"strings"
	"unicode"
)

// EntityExtractor pulls merchant or proper-noun tokens out of raw text so
// stopword and length filtering cannot destroy them.
type EntityExtractor interface {
	Extract(raw string) []string
}

// Normalizer cleans raw transaction descriptions into the token stream the
// vectorizer consumes. Normalization is idempotent: a normalized string is a
// fixed point.
type Normalizer struct {
	lemmatizer  Lemmatizer
	entities    EntityExtractor
	stopwords   map[string]struct{}
	minTokenLen int
}

// NormalizerOption customizes a Normalizer.
type NormalizerOption func(*Normalizer)

// WithLemmatizer overrides the default rule-based lemmatizer.
func WithLemmatizer(l Lemmatizer) NormalizerOption {
	return func(n *Normalizer) {
		n.lemmatizer = l
	}
}

// WithStopwords replaces the default stopword set.
func WithStopwords(words map[string]struct{}) NormalizerOption {
	return func(n *Normalizer) {
		n.stopwords = words
	}
}

// WithEntityExtractor enables named-entity retention. Extracted tokens are
// appended to the normalized stream unmodified.
func WithEntityExtractor(e EntityExtractor) NormalizerOption {
	return func(n *Normalizer) {
		n.entities = e
	}
}

// NewNormalizer builds a Normalizer with the default stopword set and
// rule-based lemmatizer.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		lemmatizer:  NewRuleLemmatizer(),
		stopwords:   Stopwords(),
		minTokenLen: 3,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize lowercases, strips punctuation, drops stopwords and short tokens,
// and lemmatizes. Empty or unusable input yields the empty string.
func (n *Normalizer) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var entities []string
	if n.entities != nil {
		entities = n.entities.Extract(raw)
	}

	text := strings.ToLower(raw)

	// Replace everything that is not a letter, digit, whitespace or currency
	// symbol with a space.
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '$' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < n.minTokenLen {
			continue
		}
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		lemma := n.lemmatizer.Lemmatize(tok)
		// A lemma can shrink below the length floor or collapse onto a
		// stopword; re-check so a second pass sees a stable stream.
		if len(lemma) < n.minTokenLen {
			continue
		}
		if _, stop := n.stopwords[lemma]; stop {
			continue
		}
		kept = append(kept, lemma)
	}

	kept = append(kept, entities...)

	return strings.Join(kept, " ")
}

// Tokens normalizes raw text and returns the resulting token slice.
func (n *Normalizer) Tokens(raw string) []string {
	normalized := n.Normalize(raw)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// MerchantExtractor is a heuristic entity extractor for bank-feed style
// descriptions. Runs of uppercase tokens (NETFLIX.COM, AMZN MKTP) are treated
// as merchant names and retained lowercased.
type MerchantExtractor struct{}

// Extract returns merchant-looking tokens from the raw description.
func (MerchantExtractor) Extract(raw string) []string {
	var out []string
	for _, tok := range strings.Fields(raw) {
		if len(tok) < 3 {
			continue
		}
		upper := 0
		letters := 0
		for _, r := range tok {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters >= 3 && upper == letters {
			cleaned := strings.ToLower(strings.Map(alnumOnly, tok))
			if len(cleaned) >= 3 {
				out = append(out, cleaned)
			}
		}
	}
	return out
}

func alnumOnly(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return r
	}
	return -1
}
