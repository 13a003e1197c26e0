package metadata

import "context"

type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// QueueSink defers the write to a worker that drains the queue into the
// configured backend.
type QueueSink struct {
	publisher Publisher
	target    string
}

func NewQueueSink(publisher Publisher, target string) *QueueSink {
	return &QueueSink{publisher: publisher, target: target}
}

func (s *QueueSink) Write(ctx context.Context, rec Record) error {
	return s.publisher.Publish(ctx, rec)
}

func (s *QueueSink) Name() string { return "rabbitmq->" + s.target }
