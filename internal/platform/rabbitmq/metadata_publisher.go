package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"legaldoc-ai/internal/model"
)

// MetadataPublisher hands document metadata to the persist worker through a
// durable queue.
type MetadataPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMetadataPublisher(conn *amqp.Connection, queueName string) *MetadataPublisher {
	return &MetadataPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *MetadataPublisher) Publish(ctx context.Context, record model.DocumentMetadata) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal metadata payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			MessageId:    record.DocumentID,
		},
	); err != nil {
		return fmt.Errorf("publish metadata failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable, non-exclusive queue shared by the
// publisher and the worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue failed: %w", err)
	}
	return q, nil
}
