package nlp

// englishStopwords is a basic English stopword list. It intentionally covers
// the function words that show up in free-text transaction descriptions.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "could", "did",
	"do", "does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"him", "his", "how", "i", "if", "in", "into", "is", "it", "its", "itself",
	"just", "may", "me", "might", "more", "most", "must", "my", "myself",
	"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "ought", "our", "ours", "out", "over", "own", "same", "shall",
	"she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "would", "you", "your", "yours",
}

// financialStopwords augments the English list with transaction boilerplate
// that carries no category signal.
var financialStopwords = []string{
	"payment", "purchase", "paid", "pay", "transaction", "receipt", "invoice",
	"order", "bill", "charge", "amount", "account", "credit", "debit", "card",
	"cash", "check", "transfer", "balance", "fee", "total", "expense", "cost",
	"price", "monthly", "annual", "quarterly", "recurring", "bought", "spend",
	"spent", "date", "money",
}

// Stopwords returns the combined default stopword set.
func Stopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopwords)+len(financialStopwords))
	for _, w := range englishStopwords {
		set[w] = struct{}{}
	}
	for _, w := range financialStopwords {
		set[w] = struct{}{}
	}
	return set
}
