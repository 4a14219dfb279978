package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
)

// NotificationConsumer reads notification requests published by the
// booking flow and hands them to a delivery function.
type NotificationConsumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
	log      *logger.Logger
}

func NewNotificationConsumer(cfg config.KafkaConfig, log *logger.Logger) (*NotificationConsumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumer, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.LogKafka("CONNECTED", cfg.NotificationTopic, fmt.Sprintf("Consumer group %s joined", cfg.GroupID))
	return &NotificationConsumer{
		consumer: consumer,
		topics:   []string{cfg.NotificationTopic},
		log:      log,
	}, nil
}

// Consume blocks until ctx is cancelled or the group fails.
func (c *NotificationConsumer) Consume(ctx context.Context, handler func(*models.NotificationEvent) error) error {
	h := &notificationHandler{handler: handler, log: c.log}

	for {
		if err := c.consumer.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("KAFKA", fmt.Sprintf("Error consuming messages: %v", err))
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}

type notificationHandler struct {
	handler func(*models.NotificationEvent) error
	log     *logger.Logger
}

func (h *notificationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *notificationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks malformed messages so they are not redelivered forever;
// messages whose delivery failed stay unmarked.
func (h *notificationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event models.NotificationEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			h.log.Error("KAFKA", fmt.Sprintf("Failed to unmarshal notification at offset %d: %v", message.Offset, err))
			session.MarkMessage(message, "")
			continue
		}

		if err := h.handler(&event); err != nil {
			h.log.Error("KAFKA", fmt.Sprintf("Failed to deliver notification %s: %v", event.ID, err))
			continue
		}

		session.MarkMessage(message, "")
	}

	return nil
}
