package classify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ecom-support-be/pkg/llm"
)

// FollowUpDetector decides whether the current query only makes sense as a
// continuation of the previous one.
type FollowUpDetector interface {
	IsFollowUp(ctx context.Context, prevQuery, currQuery string) bool
}

// RegexFollowUpDetector is the dependency-free strategy: a fixed battery of
// elliptical-continuation patterns. Fast, recall-heavy.
type RegexFollowUpDetector struct{}

var _ FollowUpDetector = RegexFollowUpDetector{}

func (RegexFollowUpDetector) IsFollowUp(_ context.Context, prevQuery, currQuery string) bool {
	if strings.TrimSpace(prevQuery) == "" {
		return false
	}
	for _, pattern := range followUpPatterns {
		if pattern.MatchString(currQuery) {
			return true
		}
	}
	return false
}

// LLMFollowUpDetector asks the model for a strict yes/no judgment. Anything
// other than a clear "yes" resolves to "no": a wrongly-standalone turn is
// cheaper than dragging stale context into a fresh question. Transport
// errors fall back to the regex battery.
type LLMFollowUpDetector struct {
	provider llm.LLMProvider
	fallback RegexFollowUpDetector
	logger   *log.Logger
}

var _ FollowUpDetector = &LLMFollowUpDetector{}

func NewLLMFollowUpDetector(provider llm.LLMProvider, logger *log.Logger) *LLMFollowUpDetector {
	return &LLMFollowUpDetector{provider: provider, logger: logger}
}

func (d *LLMFollowUpDetector) IsFollowUp(ctx context.Context, prevQuery, currQuery string) bool {
	if strings.TrimSpace(prevQuery) == "" {
		return false
	}

	prompt := buildFollowUpPrompt(prevQuery, currQuery)
	response, err := d.provider.Generate(ctx, prompt, llm.WithTemperature(0.0), llm.WithMaxTokens(5))
	if err != nil {
		d.logger.Printf("[WARN] Follow-up judgment failed, using regex fallback: %v", err)
		return d.fallback.IsFollowUp(ctx, prevQuery, currQuery)
	}

	return strings.Contains(strings.ToLower(response), "yes")
}

func buildFollowUpPrompt(prevQuery, currQuery string) string {
	var b strings.Builder

	b.WriteString("You judge whether a customer's new message is a follow-up to their previous one.\n")
	b.WriteString("A follow-up cannot be answered on its own; it leans on the previous message for meaning.\n\n")
	b.WriteString("Answer \"no\" when the new message:\n")
	b.WriteString("- can be answered standalone, without the previous message, OR\n")
	b.WriteString("- mentions an entity (product, order, topic) that the previous message does not.\n")
	b.WriteString("If you are unsure, answer \"no\".\n\n")
	fmt.Fprintf(&b, "Previous message: %s\n", prevQuery)
	fmt.Fprintf(&b, "New message: %s\n\n", currQuery)
	b.WriteString("Answer with exactly one word: yes or no.")

	return b.String()
}
