package recurring

import "strings"

// subscriptionKeywords flag descriptions that look like subscription services:
// streaming, software, memberships and explicit billing language. Matching is
// case-insensitive substring.
var subscriptionKeywords = []string{
	"netflix", "spotify", "hulu", "amazon prime", "disney+", "apple tv",
	"apple music", "youtube premium", "hbo", "subscription", "member",
	"monthly", "recurring", "audible", "prime video", "prime membership",
	"paramount+", "peacock", "tidal", "deezer", "xbox", "playstation",
	"adobe", "google one", "icloud", "github", "dropbox", "onedrive",
	"gym", "fitness", "monthly fee", "annual fee", "magazine",
}

// isLikelySubscription reports whether a description suggests a subscription
// service.
func isLikelySubscription(description string) bool {
	lowered := strings.ToLower(description)
	for _, keyword := range subscriptionKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
