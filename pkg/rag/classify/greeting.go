package classify

import "strings"

// GreetingReply short-circuits small talk before any retrieval work. The
// bool reports whether the query was a greeting at all.
func GreetingReply(query string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(query))

	switch {
	case greetingPattern.MatchString(lowered), strictGreetingPattern.MatchString(lowered):
		return "Hello! How can I help you today?", true
	case strings.Contains(lowered, "nice to meet you"):
		return "Nice to meet you too! How can I assist you today?", true
	case strings.Contains(lowered, "how are you"):
		return "I'm good, thanks! Ready to help.", true
	}

	return "", false
}
