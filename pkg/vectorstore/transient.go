package vectorstore

import (
	"fmt"

	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/store"
)

// TransientIndex is a request-scoped index built over an already-filtered
// candidate set for the final re-ranking pass. It lives for one turn and is
// never persisted.
type TransientIndex struct {
	docs []store.Document
	vecs [][]float32

	embedder embedding.EmbeddingProvider
}

// NewTransientIndex embeds every document up front. Documents that fail to
// embed fail the whole build; the caller degrades to its placeholder path.
func NewTransientIndex(embedder embedding.EmbeddingProvider, docs []store.Document) (*TransientIndex, error) {
	idx := &TransientIndex{
		docs:     docs,
		vecs:     make([][]float32, 0, len(docs)),
		embedder: embedder,
	}

	for i, doc := range docs {
		res, err := embedder.Generate(doc.Content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, fmt.Errorf("embed candidate %d: %w", i, err)
		}
		idx.vecs = append(idx.vecs, res.Embedding.Values)
	}

	return idx, nil
}

// Search returns the top-k documents for the query in relevance order, using
// the same diversity-aware selection as the persistent store. Metadata is
// stripped: only content travels past the re-rank stage.
func (t *TransientIndex) Search(query string, k int) ([]store.Document, error) {
	if len(t.docs) == 0 {
		return nil, nil
	}

	res, err := t.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	picked := MaximalMarginalRelevance(res.Embedding.Values, t.vecs, 0.5, k)

	out := make([]store.Document, 0, len(picked))
	for _, i := range picked {
		out = append(out, store.Document{
			Content: t.docs[i].Content,
			Score:   float32(CosineSimilarity(res.Embedding.Values, t.vecs[i])),
		})
	}
	return out, nil
}
