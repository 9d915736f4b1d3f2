package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// PassageEmbedding is one embedded knowledge passage. Partition separates
// the three corpora (database/document/website); Tag carries the content tag
// for database passages and is empty elsewhere.
type PassageEmbedding struct {
	Id             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Partition      string          `gorm:"column:partition;index"`
	Tag            string          `gorm:"column:tag;index"`
	Content        string          `gorm:"column:content"`
	EmbeddingValue pgvector.Vector `gorm:"column:embedding_value;type:vector(768)"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (PassageEmbedding) TableName() string {
	return "passage_embeddings"
}
