package vectorstore

import (
	"context"

	"ecom-support-be/pkg/store"
)

// SearchParams scopes one similarity search. FetchK is how many nearest
// neighbours to pull before diversity re-selection narrows them to K.
type SearchParams struct {
	Partition       store.Partition
	Query           string
	K               int
	FetchK          int
	DiversityWeight float64 // MMR lambda: 1.0 = pure relevance, 0.0 = pure diversity
	TagFilter       string  // optional metadata filter, database partition only
}

// Store is the similarity-search capability consumed by the retrieval
// engine. Implementations must be safe for concurrent use: stage-0 fans out
// across partitions.
type Store interface {
	Search(ctx context.Context, params SearchParams) ([]store.Document, error)
}
