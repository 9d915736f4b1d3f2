package repository

import (
	"context"
	"fmt"
	"time"

	"ecom-support-be/internal/model"
	"ecom-support-be/pkg/embedding"
	"ecom-support-be/pkg/store"
	"ecom-support-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// PassageRepository implements vectorstore.Store on top of pgvector and
// carries the write path that populates passage_embeddings.
type PassageRepository struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
}

var _ vectorstore.Store = &PassageRepository{}

func NewPassageRepository(db *gorm.DB, embedder embedding.EmbeddingProvider) *PassageRepository {
	return &PassageRepository{db: db, embedder: embedder}
}

// Save embeds one passage chunk and stores it under its partition and tag.
func (r *PassageRepository) Save(ctx context.Context, partition, tag, content string) error {
	res, err := r.embedder.Generate(content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return fmt.Errorf("embedding generation failed: %w", err)
	}

	rec := model.PassageEmbedding{
		Id:             uuid.New(),
		Partition:      partition,
		Tag:            tag,
		Content:        content,
		EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
		CreatedAt:      time.Now(),
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

// Search embeds the query, pulls the FetchK nearest passages for the
// partition (optionally tag-filtered), then applies diversity-aware
// selection down to K. Cosine distance in pgvector is 1 - cosine_similarity.
func (r *PassageRepository) Search(ctx context.Context, params vectorstore.SearchParams) ([]store.Document, error) {
	res, err := r.embedder.Generate(params.Query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	fetchK := params.FetchK
	if fetchK <= 0 {
		fetchK = params.K
	}

	type row struct {
		model.PassageEmbedding
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(res.Embedding.Values)

	q := r.db.WithContext(ctx).
		Table("passage_embeddings").
		Select("passage_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("partition = ?", string(params.Partition)).
		Where("deleted_at IS NULL")

	// Tags only partition the database corpus; document and website passages
	// carry no tag.
	if params.TagFilter != "" && params.Partition == store.PartitionDatabase {
		q = q.Where("tag = ?", params.TagFilter)
	}

	err = q.Order("similarity DESC").
		Limit(fetchK).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Diversity re-selection over the fetched window
	vecs := make([][]float32, len(rows))
	for i, rw := range rows {
		vecs[i] = rw.EmbeddingValue.Slice()
	}

	lambda := params.DiversityWeight
	if lambda <= 0 {
		lambda = 0.5
	}
	picked := vectorstore.MaximalMarginalRelevance(res.Embedding.Values, vecs, lambda, params.K)

	docs := make([]store.Document, 0, len(picked))
	for _, i := range picked {
		docs = append(docs, store.Document{
			Content:   rows[i].Content,
			Score:     float32(rows[i].Similarity),
			Partition: store.Partition(rows[i].Partition),
			Metadata: map[string]string{
				"partition": rows[i].Partition,
				"tag":       rows[i].Tag,
			},
		})
	}
	return docs, nil
}
