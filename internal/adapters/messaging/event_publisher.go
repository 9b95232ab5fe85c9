package messaging

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ ports.EventPublisher = (*RabbitMQBroker)(nil)

// Publish sends one outbox event to the school events queue. The outbox id
// travels as the message id so consumers can drop redeliveries.
func (rmq *RabbitMQBroker) Publish(ctx context.Context, evt domain.OutboxEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.ID,
				Type:         evt.EventType,
				Timestamp:    evt.CreatedAt,
				Body:         evt.Payload,
			},
		)
	})
	return err
}
