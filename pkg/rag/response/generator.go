package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ecom-support-be/pkg/llm"
	"ecom-support-be/pkg/store"
)

// FallbackMessage is the only failure text a user ever sees.
const FallbackMessage = "Sorry, i am unable to find any valid results. Please, try with another question 😊"

// Generator turns a ranked context set plus conversation state into the final
// answer. It never returns an error to the caller: an unusable context or a
// failed completion both collapse to FallbackMessage.
type Generator struct {
	provider llm.LLMProvider
	company  string
	logger   *log.Logger
}

func NewGenerator(provider llm.LLMProvider, company string, logger *log.Logger) *Generator {
	return &Generator{provider: provider, company: company, logger: logger}
}

// Answer synthesizes the reply for the current turn. The question shown to
// the model is always the user's current text, even on follow-up turns where
// retrieval ran against the remembered previous message.
func (g *Generator) Answer(ctx context.Context, query string, docs []store.Document, summary, lastMessage string) string {
	if !hasUsableContext(docs) {
		return FallbackMessage
	}

	messages := []llm.Message{
		{Role: "system", Content: g.buildSystemPrompt(query, docs, summary, lastMessage)},
		{Role: "user", Content: query},
	}

	answer, err := g.provider.Chat(ctx, messages, llm.WithTemperature(0.3))
	if err != nil {
		g.logger.Printf("[ERROR] Answer synthesis failed: %v", err)
		return FallbackMessage
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return FallbackMessage
	}
	return answer
}

// hasUsableContext reports whether anything beyond the placeholder sentinel
// survived retrieval.
func hasUsableContext(docs []store.Document) bool {
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) != "" && doc.Content != store.PlaceholderContent {
			return true
		}
	}
	return false
}

func (g *Generator) buildSystemPrompt(query string, docs []store.Document, summary, lastMessage string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an AI chatbot assistant working for %s.\n", g.company)
	b.WriteString("Always respond in english. Give the answer in a structured, human readable format, ")
	b.WriteString("add a few icons to make it more understandable, keep it short and to the point, ")
	b.WriteString("and never exceed 100 words.\n")
	b.WriteString("If the context contains a valid link related to the question, include it in the answer.\n")
	b.WriteString("Whenever you can't find any valid answer, politely say you didn't find any valid results and ask the user to try another question.\n")
	b.WriteString("Answer only from the given context or previous conversation; never invent results of your own (greetings and introductions excepted).\n")
	b.WriteString("Answer only what the user asked; do not reveal extra information until asked.\n\n")

	b.WriteString("### Context:\n")
	for _, doc := range docs {
		b.WriteString("- ")
		b.WriteString(doc.Content)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if summary != "" {
		fmt.Fprintf(&b, "### Conversation so far:\n%s\n\n", summary)
	}
	if lastMessage != "" {
		fmt.Fprintf(&b, "### Previous question:\n%s\n\n", lastMessage)
	}

	fmt.Fprintf(&b, "### New user query:\n%s\n", query)

	return b.String()
}
