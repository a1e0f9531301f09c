package nlp

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Lemmatizer reduces a token to its lemma. Implementations must be safe for
// concurrent use and must be total: any input maps to some output.
type Lemmatizer interface {
	Lemmatize(word string) string
}

// NewLemmatizer selects the best available lemmatizer once, at construction
// time. If a lemma lexicon is available at lexiconPath it backs a
// LexiconLemmatizer; otherwise the deterministic rule-based stemmer is used.
// Classification always functions regardless of which variant is selected.
func NewLemmatizer(lexiconPath string) Lemmatizer {
	rules := NewRuleLemmatizer()
	if lexiconPath == "" {
		return rules
	}

	lex, err := LoadLexiconLemmatizer(lexiconPath, rules)
	if err != nil {
		slog.Warn("Lemma lexicon unavailable, using rule-based stemmer",
			"path", lexiconPath,
			"error", err)
		return rules
	}

	slog.Info("Loaded lemma lexicon", "path", lexiconPath, "entries", lex.Len())
	return lex
}

// suffixRule rewrites a matching suffix. Rules are ordered; the first match
// wins.
type suffixRule struct {
	suffix      string
	replacement string
}

// RuleLemmatizer is a deterministic suffix-stripping stemmer. It is the
// fallback used when no linguistic lexicon is available and covers plurals,
// verb forms, comparatives and common nominalizations.
type RuleLemmatizer struct {
	cache      sync.Map
	rules      []suffixRule
	exceptions map[string]struct{}
	irregular  map[string]string
}

// NewRuleLemmatizer builds the stemmer with its rule, exception and
// irregular-form tables.
func NewRuleLemmatizer() *RuleLemmatizer {
	l := &RuleLemmatizer{
		rules: []suffixRule{
			// Plural forms
			{"ies", "y"},
			{"ying", "y"},
			{"ied", "y"},
			{"es", ""},
			{"s", ""},
			// Verb forms
			{"ing", ""},
			{"ed", ""},
			// Comparative and superlative
			{"est", ""},
			{"er", ""},
			// Nominalizations
			{"tion", "t"},
			{"sion", "d"},
			{"ment", ""},
			{"ance", ""},
			{"ence", "e"},
			{"ity", ""},
			{"ism", ""},
		},
		exceptions: map[string]struct{}{
			"business": {}, "news": {}, "paris": {}, "this": {}, "was": {},
			"is": {}, "has": {}, "gas": {}, "bus": {}, "series": {},
			"species": {}, "analysis": {}, "basis": {}, "crisis": {},
			"thesis": {}, "status": {}, "virus": {}, "bonus": {}, "minus": {},
			"campus": {}, "texas": {}, "vegas": {}, "fitness": {},
			"wellness": {}, "express": {}, "uber": {},
		},
		irregular: map[string]string{
			"are": "be", "were": "be", "is": "be", "am": "be", "was": "be",
			"being": "be", "been": "be",
			"had": "have", "has": "have", "having": "have",
			"does": "do", "did": "do", "doing": "do", "done": "do",
			"went": "go", "going": "go", "goes": "go", "gone": "go",
			"made": "make", "making": "make", "makes": "make",
			"said": "say", "saying": "say", "says": "say",
			"bought": "buy", "buying": "buy", "buys": "buy",
			"took": "take", "taking": "take", "takes": "take", "taken": "take",
		},
	}
	return l
}

// Lemmatize applies the rule tables until the token reaches a fixed point, so
// a lemma fed back through the stemmer is returned unchanged.
func (l *RuleLemmatizer) Lemmatize(word string) string {
	if word == "" {
		return ""
	}
	word = strings.ToLower(word)

	if cached, ok := l.cache.Load(word); ok {
		return cached.(string)
	}

	result := word
	for range 5 {
		next := l.applyOnce(result)
		if next == result {
			break
		}
		result = next
	}

	l.cache.Store(word, result)
	return result
}

func (l *RuleLemmatizer) applyOnce(word string) string {
	if _, ok := l.exceptions[word]; ok {
		return word
	}
	if lemma, ok := l.irregular[word]; ok {
		return lemma
	}
	if len(word) <= 3 {
		return word
	}

	// Double consonant before -ing / -ed: running -> run, stopped -> stop.
	if strings.HasSuffix(word, "ing") && len(word) > 5 &&
		word[len(word)-4] == word[len(word)-5] && !isVowel(word[len(word)-4]) {
		return word[:len(word)-4]
	}
	if strings.HasSuffix(word, "ed") && len(word) > 4 &&
		word[len(word)-3] == word[len(word)-4] && !isVowel(word[len(word)-3]) {
		return word[:len(word)-3]
	}

	for _, rule := range l.rules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		// Never strip a bare -s from -ss, -us or -is endings.
		if rule.suffix == "s" && (strings.HasSuffix(word, "ss") ||
			strings.HasSuffix(word, "us") || strings.HasSuffix(word, "is")) {
			continue
		}
		stem := word[:len(word)-len(rule.suffix)] + rule.replacement
		if len(stem) >= 2 {
			return stem
		}
	}

	return word
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// LexiconLemmatizer looks lemmas up in a word-to-lemma table loaded from disk
// and defers to a fallback stemmer for words outside the lexicon.
type LexiconLemmatizer struct {
	fallback Lemmatizer
	lemmas   map[string]string
}

// LoadLexiconLemmatizer reads a lexicon file of whitespace-separated
// "form lemma" pairs, one per line. Lines starting with # are skipped.
func LoadLexiconLemmatizer(path string, fallback Lemmatizer) (*LexiconLemmatizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	lemmas := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		lemmas[strings.ToLower(fields[0])] = strings.ToLower(fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &LexiconLemmatizer{lemmas: lemmas, fallback: fallback}, nil
}

// Len returns the number of lexicon entries.
func (l *LexiconLemmatizer) Len() int {
	return len(l.lemmas)
}

// Lemmatize resolves the word through the lexicon, following at most a few
// chained entries, then falls back to the rule-based stemmer.
func (l *LexiconLemmatizer) Lemmatize(word string) string {
	word = strings.ToLower(word)
	current := word
	for range 3 {
		lemma, ok := l.lemmas[current]
		if !ok || lemma == current {
			break
		}
		current = lemma
	}
	if current != word {
		return current
	}
	if _, ok := l.lemmas[word]; ok {
		return word
	}
	return l.fallback.Lemmatize(word)
}
