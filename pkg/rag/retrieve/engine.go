package retrieve

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/store"
	"ecom-support-be/pkg/vectorstore"
)

// minTermScores holds the per-partition partial-ratio cutoff below which a
// candidate shares no meaningful vocabulary with the query.
var minTermScores = map[store.Partition]int{
	store.PartitionDatabase: 30,
	store.PartitionDocument: 30,
	store.PartitionWebsite:  30,
}

const defaultMinTermScore = 30

const diversityWeight = 0.5

// PartitionClassifier routes a query to the partition it should search.
type PartitionClassifier interface {
	Classify(ctx context.Context, query string) store.Partition
}

// Request carries one retrieval run. Query is the search text, already
// scope-attached when the turn referenced the caller's own records. A
// non-empty Pinned partition skips classification entirely.
type Request struct {
	Query  string
	Pinned store.Partition
	Tag    string
	Scoped bool
	UserID int64
}

// Result is the final candidate set plus the partition that produced it.
// Documents is never empty: an empty pipeline yields the placeholder.
type Result struct {
	Documents []store.Document
	Partition store.Partition
}

// Engine runs the staged retrieval pipeline: partition search, ownership
// filtering, lexical narrowing, budget shrinkage, and a transient re-rank.
// Every failure path degrades to the placeholder set instead of erroring.
type Engine struct {
	store      vectorstore.Store
	embedder   embedding.EmbeddingProvider
	classifier PartitionClassifier
	logger     *log.Logger
}

func NewEngine(vs vectorstore.Store, embedder embedding.EmbeddingProvider, classifier PartitionClassifier, logger *log.Logger) *Engine {
	return &Engine{
		store:      vs,
		embedder:   embedder,
		classifier: classifier,
		logger:     logger,
	}
}

func (e *Engine) Retrieve(ctx context.Context, req Request) Result {
	limits := DefaultLimits()

	partition, docs := e.gather(ctx, req, limits.First)
	if len(docs) == 0 {
		e.logger.Printf("[INFO] No candidates on partition %s, returning placeholder", partition)
		return Result{Documents: store.Placeholder(), Partition: partition}
	}
	limits.SetSecond(len(docs))

	// Only database passages encode customer identifiers; policy and site
	// content is shared and never carries one.
	if req.Scoped && partition == store.PartitionDatabase {
		docs = e.filterOwnership(docs, req.UserID)
		if len(docs) == 0 {
			e.logger.Printf("[INFO] No records owned by user %d, returning placeholder", req.UserID)
			return Result{Documents: store.Placeholder(), Partition: partition}
		}
	}

	// Lexical narrowing only runs on broad pools: a tag already narrowed by
	// content type, and a scoped pool already narrowed by ownership.
	if req.Tag == "" && !req.Scoped {
		docs = e.narrowByTerms(req.Query, partition, docs)
		if len(docs) == 0 {
			e.logger.Printf("[INFO] No candidates share query vocabulary, returning placeholder")
			return Result{Documents: store.Placeholder(), Partition: partition}
		}
	}

	if len(docs) > limits.Second {
		docs = docs[:limits.Second]
	}
	limits.SetThird(len(docs))

	ranked := e.Rerank(req.Query, docs, limits.Third)
	return Result{Documents: ranked, Partition: partition}
}

// gather produces the stage-one candidate pool. A pinned partition gets a
// single scoped search; otherwise all three partitions are searched while the
// classifier runs, and the winning partition's results are kept.
func (e *Engine) gather(ctx context.Context, req Request, k int) (store.Partition, []store.Document) {
	if req.Pinned != "" {
		return req.Pinned, e.search(ctx, req.Pinned, req, k)
	}

	type outcome struct {
		partition store.Partition
		docs      []store.Document
	}

	results := make(chan outcome, len(store.Partitions))
	for _, p := range store.Partitions {
		go func(p store.Partition) {
			results <- outcome{p, e.search(ctx, p, req, k)}
		}(p)
	}

	winner := e.classifier.Classify(ctx, req.Query)

	var docs []store.Document
	for range store.Partitions {
		out := <-results
		if out.partition == winner {
			docs = out.docs
		}
	}
	return winner, docs
}

func (e *Engine) search(ctx context.Context, p store.Partition, req Request, k int) []store.Document {
	docs, err := e.store.Search(ctx, vectorstore.SearchParams{
		Partition:       p,
		Query:           req.Query,
		K:               k,
		FetchK:          k * 2,
		DiversityWeight: diversityWeight,
		TagFilter:       req.Tag,
	})
	if err != nil {
		e.logger.Printf("[ERROR] Search on partition %s failed: %v", p, err)
		return nil
	}
	return docs
}

// filterOwnership keeps only documents that carry the user's own identifier.
// Leaking another customer's records is worse than answering with nothing.
func (e *Engine) filterOwnership(docs []store.Document, userID int64) []store.Document {
	pattern, err := regexp.Compile(fmt.Sprintf(`(?i)\b(?:customer|user)\s*(?:id)?\s*[:=]\s*%d\b`, userID))
	if err != nil {
		e.logger.Printf("[ERROR] Ownership pattern for user %d failed to compile: %v", userID, err)
		return nil
	}

	kept := docs[:0:0]
	for _, doc := range docs {
		if pattern.MatchString(doc.Content) {
			kept = append(kept, doc)
		}
	}
	return kept
}

// narrowByTerms drops candidates that share no vocabulary with the query's
// salient words. When no salient words can be extracted the pool passes
// through untouched.
func (e *Engine) narrowByTerms(query string, partition store.Partition, docs []store.Document) []store.Document {
	terms, err := SalientTerms(query, partition)
	if err != nil {
		e.logger.Printf("[WARN] Term extraction failed, skipping lexical narrowing: %v", err)
		return docs
	}
	if len(terms) == 0 {
		return docs
	}

	minScore, ok := minTermScores[partition]
	if !ok {
		minScore = defaultMinTermScore
	}

	kept := docs[:0:0]
	for _, doc := range docs {
		content := strings.ToLower(doc.Content)
		for _, term := range terms {
			if fuzzy.PartialRatio(term, content) >= minScore {
				kept = append(kept, doc)
				break
			}
		}
	}
	return kept
}

// Rerank re-scores docs against query on a transient in-memory index and
// returns the top k. It is exported for callers that bring their own
// candidate set, such as the live-cart path. Any failure, or an empty
// outcome, yields the placeholder.
func (e *Engine) Rerank(query string, docs []store.Document, k int) []store.Document {
	index, err := vectorstore.NewTransientIndex(e.embedder, docs)
	if err != nil {
		e.logger.Printf("[ERROR] Transient index build failed: %v", err)
		return store.Placeholder()
	}

	ranked, err := index.Search(query, k)
	if err != nil {
		e.logger.Printf("[ERROR] Transient re-rank failed: %v", err)
		return store.Placeholder()
	}
	if len(ranked) == 0 {
		return store.Placeholder()
	}
	return ranked
}
