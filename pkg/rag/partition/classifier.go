package partition

import (
	"context"
	"log"
	"strings"

	"ecom-support-be/pkg/llm"
	"ecom-support-be/pkg/store"
)

// Classifier routes a query to one knowledge partition via a single-word
// LLM classification. Anything unrecognized, including an unreachable model,
// lands on the database partition.
type Classifier struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewClassifier(provider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{provider: provider, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, query string) store.Partition {
	response, err := c.provider.Generate(ctx, buildDivisionPrompt(query), llm.WithTemperature(0.0), llm.WithMaxTokens(10))
	if err != nil {
		c.logger.Printf("[WARN] Partition classification failed, defaulting to database: %v", err)
		return store.PartitionDatabase
	}

	content := strings.ToLower(response)
	switch {
	case strings.Contains(content, string(store.PartitionDatabase)):
		return store.PartitionDatabase
	case strings.Contains(content, string(store.PartitionDocument)):
		return store.PartitionDocument
	case strings.Contains(content, string(store.PartitionWebsite)):
		return store.PartitionWebsite
	}

	c.logger.Printf("[WARN] Unrecognized partition response %q, defaulting to database", strings.TrimSpace(response))
	return store.PartitionDatabase
}

func buildDivisionPrompt(query string) string {
	var b strings.Builder

	b.WriteString("You classify customer-support queries into exactly one of three categories.\n\n")

	b.WriteString("'document': guidance, policies, FAQs, or official instructions.\n")
	b.WriteString("Examples:\n")
	b.WriteString("- \"How do I return a product?\" -> document (policy question)\n")
	b.WriteString("- \"What are your refund rules?\" -> document\n")
	b.WriteString("- \"What does 'out of stock' mean?\" -> document\n\n")

	b.WriteString("'database': orders, products, categories, carts, stock, pricing, blogs, or user-specific records.\n")
	b.WriteString("Examples:\n")
	b.WriteString("- \"Where is my order?\" -> database (order tracking)\n")
	b.WriteString("- \"How many items are in my cart?\" -> database\n")
	b.WriteString("- \"Show me all available laptops under $1000.\" -> database\n")
	b.WriteString("- \"Do you have blog posts on AI?\" -> database\n")
	b.WriteString("- \"Suggest a good smartwatch.\" -> database (product recommendation)\n\n")

	b.WriteString("'website': company information, reviews, or general/publicly available knowledge.\n")
	b.WriteString("Examples:\n")
	b.WriteString("- \"What services does your company provide?\" -> website\n")
	b.WriteString("- \"Can you share customer reviews?\" -> website\n")
	b.WriteString("- \"Tell me about Nikola Tesla.\" -> website (general knowledge)\n\n")

	b.WriteString("Frustration or urgency about an order is still 'database'; confusion about a policy is still 'document'.\n\n")

	b.WriteString("Query:\n")
	b.WriteString(query)
	b.WriteString("\n\nRespond with only one category name: database, document, or website.")

	return b.String()
}
