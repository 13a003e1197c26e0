package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"legaldoc-ai/internal/metadata"
	rabbitmqClient "legaldoc-ai/internal/platform/rabbitmq"
)

// MetadataPersistWorker drains the metadata queue into a sink.
type MetadataPersistWorker struct {
	conn      *amqp.Connection
	sink      metadata.Sink
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMetadataPersistWorker(conn *amqp.Connection, sink metadata.Sink, queueName string, logger *slog.Logger) *MetadataPersistWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataPersistWorker{
		conn:      conn,
		sink:      sink,
		queueName: queueName,
		logger:    logger.With("component", "metadata_worker", "queue", queueName),
	}
}

func (w *MetadataPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmqClient.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		w.run(workerCtx, deliveries)
	}()

	return nil
}

func (w *MetadataPersistWorker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.handle(ctx, d.Body); err != nil {
				w.logger.Warn("metadata persist failed", "message_id", d.MessageId, "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handle decodes one delivery and writes it. Any error means the delivery is
// dropped, not requeued.
func (w *MetadataPersistWorker) handle(ctx context.Context, body []byte) error {
	var rec metadata.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	if rec.DocumentID == "" {
		return fmt.Errorf("metadata without document id")
	}
	if err := w.sink.Write(ctx, rec); err != nil {
		return err
	}
	w.logger.Info("metadata persisted", "sink", w.sink.Name(), "document_id", rec.DocumentID)
	return nil
}

func (w *MetadataPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
