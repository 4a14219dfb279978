package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
)

type Producer struct {
	producer          sarama.SyncProducer
	mockMode          bool
	eventsTopic       string
	notificationTopic string
	log               *logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	if cfg.MockMode {
		log.LogKafka("MOCK_MODE", "producer", "Running in mock mode - no actual Kafka connection")
		return &Producer{
			mockMode:          true,
			eventsTopic:       cfg.EventsTopic,
			notificationTopic: cfg.NotificationTopic,
			log:               log,
		}, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	log.LogKafka("CONNECTED", "producer", fmt.Sprintf("Connected to Kafka brokers: %v", cfg.Brokers))
	return NewProducerWithClient(producer, cfg, log), nil
}

// NewProducerWithClient wraps an existing sarama producer.
func NewProducerWithClient(producer sarama.SyncProducer, cfg config.KafkaConfig, log *logger.Logger) *Producer {
	return &Producer{
		producer:          producer,
		eventsTopic:       cfg.EventsTopic,
		notificationTopic: cfg.NotificationTopic,
		log:               log,
	}
}

// PublishBookingEvent sends a lifecycle event keyed by booking uuid, so all
// events of one booking land on the same partition in order.
func (p *Producer) PublishBookingEvent(event *models.BookingEvent) error {
	return p.publish(p.eventsTopic, event.BookingUUID, event.Type, event)
}

func (p *Producer) PublishNotification(event *models.NotificationEvent) error {
	return p.publish(p.notificationTopic, event.ID, event.Template, event)
}

func (p *Producer) publish(topic, key, kind string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.mockMode {
		p.log.LogKafka("MOCK_PUBLISH", topic, fmt.Sprintf("Mock publishing %s for %s", kind, key))
		p.log.LogKafka("MOCK_DATA", topic, string(data))
		return nil
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(kind)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error("KAFKA", fmt.Sprintf("Failed to send message to topic %s: %v", topic, err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.log.LogKafka("PUBLISHED", topic, fmt.Sprintf("%s for %s sent to partition %d at offset %d", kind, key, partition, offset))
	return nil
}

func (p *Producer) Close() error {
	if p.mockMode {
		p.log.LogKafka("MOCK_CLOSE", "producer", "Mock producer closed")
		return nil
	}

	if p.producer != nil {
		p.log.LogKafka("CLOSING", "producer", "Closing Kafka producer connection")
		return p.producer.Close()
	}
	return nil
}
