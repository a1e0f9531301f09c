package nlp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempLexicon(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lexicon.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNormalizeBasic(t *testing.T) {
	n := NewNormalizer()

	assert.Equal(t, "coffee starbuck", n.Normalize("Coffee at Starbucks"))
	assert.Equal(t, "netflix com 12345", n.Normalize("NETFLIX.COM *12345"))
}

func TestNormalizeEmptyInputs(t *testing.T) {
	n := NewNormalizer()

	assert.Equal(t, "", n.Normalize(""))
	assert.Equal(t, "", n.Normalize("   "))
	assert.Equal(t, "", n.Normalize("!!! ???"))
	// Pure stopwords and short tokens carry no signal.
	assert.Equal(t, "", n.Normalize("the and for"))
	assert.Equal(t, "", n.Normalize("a b c"))
}

func TestNormalizeDropsFinancialBoilerplate(t *testing.T) {
	n := NewNormalizer()

	// "payment" is boilerplate; its lemma "pay" is too.
	assert.Equal(t, "", n.Normalize("payment"))
	assert.Equal(t, "grocery", n.Normalize("payments for groceries"))
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"Coffee at Starbucks",
		"MONTHLY GYM MEMBERSHIP DUES",
		"Uber trip downtown 04/12",
		"AMZN Mktp US*2K34L",
	}
	for _, raw := range inputs {
		once := n.Normalize(raw)
		assert.Equal(t, once, n.Normalize(once), "input %q", raw)
	}
}

func TestTokens(t *testing.T) {
	n := NewNormalizer()

	assert.Equal(t, []string{"coffee", "starbuck"}, n.Tokens("Coffee at Starbucks"))
	assert.Nil(t, n.Tokens("!!"))
}

func TestNormalizeWithEntityExtractor(t *testing.T) {
	n := NewNormalizer(WithEntityExtractor(MerchantExtractor{}))

	out := n.Normalize("NETFLIX.COM subscription")
	assert.Contains(t, out, "netflixcom")
}

func TestMerchantExtractor(t *testing.T) {
	e := MerchantExtractor{}

	assert.Equal(t, []string{"netflixcom"}, e.Extract("NETFLIX.COM monthly"))
	assert.Equal(t, []string{"amzn", "mktp"}, e.Extract("AMZN MKTP purchase"))
	// Mixed-case tokens are not merchants.
	assert.Empty(t, e.Extract("Coffee at Starbucks"))
}

func TestRuleLemmatizer(t *testing.T) {
	l := NewRuleLemmatizer()

	tests := map[string]string{
		"running":   "run",
		"stopped":   "stop",
		"companies": "company",
		"buses":     "bus",
		"bought":    "buy",
		"went":      "go",
		"payments":  "pay",
		"business":  "business",
		"gas":       "gas",
		"uber":      "uber",
		"vegas":     "vegas",
		"fitness":   "fitness",
	}
	for word, want := range tests {
		assert.Equal(t, want, l.Lemmatize(word), "word %q", word)
	}
}

func TestRuleLemmatizerFixedPoint(t *testing.T) {
	l := NewRuleLemmatizer()

	for _, word := range []string{"running", "subscriptions", "memberships", "groceries"} {
		lemma := l.Lemmatize(word)
		assert.Equal(t, lemma, l.Lemmatize(lemma), "word %q", word)
	}
}

func TestRuleLemmatizerShortWordsUntouched(t *testing.T) {
	l := NewRuleLemmatizer()

	assert.Equal(t, "cvs", l.Lemmatize("cvs"))
	assert.Equal(t, "abc", l.Lemmatize("ABC"))
	assert.Equal(t, "", l.Lemmatize(""))
}

func TestNewLemmatizerFallsBackWithoutLexicon(t *testing.T) {
	l := NewLemmatizer("")
	require.NotNil(t, l)
	assert.Equal(t, "run", l.Lemmatize("running"))

	l = NewLemmatizer("/nonexistent/lexicon.txt")
	require.NotNil(t, l)
	assert.Equal(t, "run", l.Lemmatize("running"))
}

func TestLexiconLemmatizer(t *testing.T) {
	path := writeTempLexicon(t, "# comment\nmice mouse\nran run\nbadline\n")

	lex, err := LoadLexiconLemmatizer(path, NewRuleLemmatizer())
	require.NoError(t, err)
	assert.Equal(t, 2, lex.Len())

	assert.Equal(t, "mouse", lex.Lemmatize("mice"))
	assert.Equal(t, "mouse", lex.Lemmatize("MICE"))
	// Outside the lexicon the rule stemmer applies.
	assert.Equal(t, "run", lex.Lemmatize("running"))
}
