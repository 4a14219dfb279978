package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"booking-service/internal/models"
)

// NotificationPublisher is satisfied by the Kafka producer.
type NotificationPublisher interface {
	PublishNotification(event *models.NotificationEvent) error
}

// KafkaRelay hands notifications to the notification topic so the request
// path never waits on SMTP.
type KafkaRelay struct {
	publisher NotificationPublisher
}

func NewKafkaRelay(publisher NotificationPublisher) *KafkaRelay {
	return &KafkaRelay{publisher: publisher}
}

func (r *KafkaRelay) Send(ctx context.Context, recipients []string, template string, vars map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.publisher.PublishNotification(&models.NotificationEvent{
		ID:         uuid.NewString(),
		Recipients: recipients,
		Template:   template,
		Variables:  vars,
		Timestamp:  time.Now().UTC(),
	})
}
