package service

import (
	"context"
	"fmt"
	"log"

	"ecom-support-be/internal/dto"
	"ecom-support-be/internal/repository"
	"ecom-support-be/pkg/utils"
)

const (
	passageChunkSize    = 1000
	passageChunkOverlap = 100
)

type IPassageService interface {
	Index(ctx context.Context, req *dto.IndexPassageRequest) (*dto.IndexPassageResponse, error)
}

// passageService chunks incoming content and embeds each chunk into the
// partition index.
type passageService struct {
	passages *repository.PassageRepository
	logger   *log.Logger
}

func NewPassageService(passages *repository.PassageRepository, logger *log.Logger) IPassageService {
	return &passageService{passages: passages, logger: logger}
}

func (s *passageService) Index(ctx context.Context, req *dto.IndexPassageRequest) (*dto.IndexPassageResponse, error) {
	chunks := utils.SplitText(req.Content, passageChunkSize, passageChunkOverlap)

	for i, chunk := range chunks {
		if err := s.passages.Save(ctx, req.Partition, req.Tag, chunk); err != nil {
			return nil, fmt.Errorf("failed to index chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	s.logger.Printf("[INFO] Indexed %d chunk(s) into partition %s", len(chunks), req.Partition)
	return &dto.IndexPassageResponse{Chunks: len(chunks)}, nil
}
