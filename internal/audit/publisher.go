package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher streams audit records to Kafka for downstream compliance
// consumers. Persistence in the Store is the source of truth; the stream is
// a copy for real-time processing.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects a Kafka producer for the audit topic.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("audit: kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish produces the record, keyed by submission ID so per-submission
// ordering survives partitioning.
func (p *Publisher) Publish(ctx context.Context, record *Record) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("audit: marshal record: %w", err)
	}

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.SubmissionID),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("audit: produce record: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (p *Publisher) Close() {
	p.client.Close()
}
