package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sam-evolv/property-assistant-sub010/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishExchangeCompleted(ctx context.Context, msg *dto.ExchangeCompletedMessage) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
}

func NewPublisherService(publisher message.Publisher, topicName string) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
	}
}

func (p *publisherService) PublishExchangeCompleted(ctx context.Context, msg *dto.ExchangeCompletedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal exchange message: %w", err)
	}

	m := message.NewMessage(watermill.NewUUID(), payload)
	m.SetContext(ctx)
	if err := p.publisher.Publish(p.topicName, m); err != nil {
		return fmt.Errorf("publish exchange message: %w", err)
	}
	return nil
}
