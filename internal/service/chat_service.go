package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ecom-support-be/internal/dto"
	"ecom-support-be/pkg/rag/executor"
	"ecom-support-be/pkg/utils"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	pipeline *executor.Pipeline
}

func NewChatService(pipeline *executor.Pipeline) IChatService {
	return &chatService{pipeline: pipeline}
}

func (c *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	answer := c.pipeline.HandleTurn(ctx, req.SessionId, req.Message, req.CustomerId)

	return &dto.ChatResponse{
		SessionId: req.SessionId,
		Answer:    answer,
	}, nil
}

// busTurnRecorder hands finished turns to the in-process bus so the memory
// write never blocks the response.
type busTurnRecorder struct {
	publisher IPublisherService
	logger    *log.Logger
}

var _ executor.TurnRecorder = &busTurnRecorder{}

func NewBusTurnRecorder(publisher IPublisherService, logger *log.Logger) executor.TurnRecorder {
	return &busTurnRecorder{publisher: publisher, logger: logger}
}

func (r *busTurnRecorder) TurnCompleted(sessionID, userMessage, botResponse string) {
	payload, err := json.Marshal(dto.ChatTurnMessage{
		SessionId:   sessionID,
		UserMessage: userMessage,
		BotResponse: botResponse,
	})
	if err != nil {
		r.logger.Printf("[ERROR] Failed to marshal turn message: %v", err)
		return
	}

	utils.Detach("publish-turn", 5*time.Second, r.logger, func(ctx context.Context) error {
		return r.publisher.Publish(ctx, payload)
	})
}
