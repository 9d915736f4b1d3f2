package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"strings"
	"time"

	"ecom-support-be/pkg/cache"
	"ecom-support-be/pkg/commerce"
	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/llm"
	"ecom-support-be/pkg/rag/classify"
	"ecom-support-be/pkg/rag/executor"
	"ecom-support-be/pkg/rag/memory"
	"ecom-support-be/pkg/rag/partition"
	"ecom-support-be/pkg/rag/response"
	"ecom-support-be/pkg/rag/retrieve"
	"ecom-support-be/pkg/store"
	"ecom-support-be/pkg/vectorstore"

	"github.com/fatih/color"
)

// Offline dry-run of the full conversational pipeline against scripted
// providers. No database, Redis, or model server required.

type scriptedLLM struct{}

func (scriptedLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	lowered := strings.ToLower(prompt)
	switch {
	case strings.Contains(lowered, "one category name"):
		query := lowered
		if i := strings.LastIndex(lowered, "query:"); i >= 0 {
			query = lowered[i:]
		}
		if strings.Contains(query, "policy") || strings.Contains(query, "return") {
			return "document", nil
		}
		return "database", nil
	case strings.Contains(lowered, "yes or no"):
		if strings.Contains(lowered, "what about") || strings.Contains(lowered, "show more") {
			return "yes", nil
		}
		return "no", nil
	case strings.Contains(lowered, "summarize"):
		return "The customer asked about their recent order.", nil
	}
	return "Here is what I found in our records.", nil
}

func (s scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	var last string
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return s.Generate(ctx, last, options...)
}

// hashEmbedder produces deterministic pseudo-embeddings so similarity math
// runs without a model server.
type hashEmbedder struct{}

func (hashEmbedder) Generate(text string, _ string) (*embedding.EmbeddingResponse, error) {
	values := make([]float32, 64)
	for i, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		values[(int(h.Sum32())+i)%len(values)] += 1
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: embedding.NormalizeVector(values)},
	}, nil
}

type cannedStore struct{}

func (cannedStore) Search(_ context.Context, params vectorstore.SearchParams) ([]store.Document, error) {
	corpus := map[store.Partition][]string{
		store.PartitionDatabase: {
			"order #1042 status: shipped, customer id = 42, arriving friday",
			"order #1043 status: processing, customer id = 7",
			"product: trail runner shoes, price $89, in stock",
		},
		store.PartitionDocument: {
			"returns are accepted within 30 days of delivery with the original receipt",
			"refunds are issued to the original payment method within 5 business days",
		},
		store.PartitionWebsite: {
			"we are a family-run outdoor gear store founded in 2012",
		},
	}

	var docs []store.Document
	for _, content := range corpus[params.Partition] {
		docs = append(docs, store.Document{Content: content, Partition: params.Partition})
	}
	return docs, nil
}

type noopRecorder struct{}

func (noopRecorder) TurnCompleted(_, _, _ string) {}

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	model := scriptedLLM{}
	embedder := hashEmbedder{}

	sessions := memory.NewSessionMemory(cache.NewMemoryCache(30*time.Minute), model, 30*time.Minute, logger)
	classifier := partition.NewClassifier(model, logger)
	engine := retrieve.NewEngine(cannedStore{}, embedder, classifier, logger)
	generator := response.NewGenerator(model, "Trailhead Gear", logger)

	pipeline := executor.NewPipeline(executor.Config{
		Session:   sessions,
		FollowUp:  classify.NewLLMFollowUpDetector(model, logger),
		Tags:      classify.NewTagExtractor(sessions, logger),
		Engine:    engine,
		Generator: generator,
		Recorder:  noopRecorder{},
		Platform:  commerce.PlatformWordPress,
		Logger:    logger,
	})

	turns := []struct {
		message string
		userID  int64
	}{
		{"hello", 0},
		{"where is my order", 42},
		{"what about the delivery date", 42},
		{"what is your return policy", 0},
	}

	ctx := context.Background()
	sessionID := "simulation-session"

	bold := color.New(color.Bold)
	userColor := color.New(color.FgCyan)
	botColor := color.New(color.FgGreen)

	bold.Println("== Conversational pipeline dry-run ==")
	for _, turn := range turns {
		userColor.Printf("\nuser (id=%d)> %s\n", turn.userID, turn.message)
		answer := pipeline.HandleTurn(ctx, sessionID, turn.message, turn.userID)
		botColor.Printf("bot> %s\n", answer)

		// Give the detached memory write a moment before the next turn
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println()
	bold.Println("== Done ==")
}
