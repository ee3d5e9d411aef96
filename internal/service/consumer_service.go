package service

import (
	"context"
	"encoding/json"

	"github.com/sam-evolv/property-assistant-sub010/internal/dto"
	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// EventPublisher forwards events to the broker. *nats.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber    message.Subscriber
	topicName     string
	uowFactory    unitofwork.RepositoryFactory
	broker        EventPublisher
	recordAnswers bool
	logger        logger.ILogger
}

// NewConsumerService stores every completed exchange and forwards it to
// broker when one is configured. With recordAnswers off the answer text is
// dropped before storage.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	broker EventPublisher,
	recordAnswers bool,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:    subscriber,
		topicName:     topicName,
		uowFactory:    uowFactory,
		broker:        broker,
		recordAnswers: recordAnswers,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ExchangeCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal exchange message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retry a poison message
		return
	}
	if !cs.recordAnswers {
		payload.Answer = ""
	}

	exchange := &entity.AssistantExchange{
		Id:            uuid.New(),
		TenantId:      payload.TenantId,
		UserId:        payload.UserId,
		DevelopmentId: payload.DevelopmentId,
		Question:      payload.Question,
		Answer:        payload.Answer,
		Layers:        payload.Layers,
		Functions:     payload.Functions,
		RouteSource:   payload.RouteSource,
		IsRegulatory:  payload.IsRegulatory,
		SourceCount:   payload.SourceCount,
		Outcome:       payload.Outcome,
		DurationMs:    payload.DurationMs,
		CreatedAt:     payload.CompletedAt,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AssistantExchangeRepository().Create(ctx, exchange); err != nil {
		cs.logger.Error("CONSUMER", "Failed to store exchange", map[string]interface{}{
			"tenant_id": payload.TenantId.String(),
			"error":     err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.broker != nil {
		event := events.New(events.AssistantExchangeCompleted, map[string]interface{}{
			"exchange_id":   exchange.Id.String(),
			"tenant_id":     payload.TenantId.String(),
			"user_id":       payload.UserId.String(),
			"layers":        payload.Layers,
			"functions":     payload.Functions,
			"route_source":  payload.RouteSource,
			"is_regulatory": payload.IsRegulatory,
			"outcome":       payload.Outcome,
			"duration_ms":   payload.DurationMs,
		})
		if payload.DevelopmentId != nil {
			event.Data["development_id"] = payload.DevelopmentId.String()
		}
		// The record is stored; a broker outage must not cause a duplicate.
		if err := cs.broker.Publish(ctx, event); err != nil {
			cs.logger.Warn("CONSUMER", "Failed to forward exchange event", map[string]interface{}{
				"exchange_id": exchange.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	cs.logger.Debug("CONSUMER", "Exchange recorded", map[string]interface{}{
		"exchange_id": exchange.Id.String(),
		"outcome":     payload.Outcome,
	})
	msg.Ack()
}
