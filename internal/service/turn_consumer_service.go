package service

import (
	"context"
	"encoding/json"
	"log"

	"ecom-support-be/internal/dto"
	"ecom-support-be/pkg/events"
	"ecom-support-be/pkg/rag/memory"
	"ecom-support-be/pkg/rag/response"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher is the outbound analytics bus. Nil-able: deployments
// without NATS simply skip the event.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// turnConsumerService drains completed chat turns off the in-process bus and
// performs the memory write the response path did not wait for.
type turnConsumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	sessions       *memory.SessionMemory
	eventPublisher EventPublisher
}

func NewTurnConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessions *memory.SessionMemory,
	eventPublisher EventPublisher,
) IConsumerService {
	return &turnConsumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		sessions:       sessions,
		eventPublisher: eventPublisher,
	}
}

func (cs *turnConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *turnConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Recording turn for session: %s", payload.SessionId)

	if err := cs.sessions.RecordTurn(ctx, payload.SessionId, payload.UserMessage, payload.BotResponse); err != nil {
		log.Printf("[ERROR] Failed to record turn for session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	if cs.eventPublisher != nil {
		answered := payload.BotResponse != response.FallbackMessage
		evt := events.ChatTurnCompleted(payload.SessionId, answered)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish turn event: %v", err)
		}
	}

	msg.Ack()
}
