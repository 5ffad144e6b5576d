package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"hoteldesk/internal/domain/event"
)

// Publisher delivers domain events to Kafka, one topic per event name. It is
// the production implementation of event.Sink.
type Publisher struct {
	sync   sarama.SyncProducer
	prefix string
}

func NewPublisher(brokers []string, topicPrefix string, cfg *sarama.Config) (*Publisher, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	// the idempotent producer only allows one in-flight request per broker
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: producer: %w", err)
	}
	return &Publisher{sync: sync, prefix: topicPrefix}, nil
}

type envelope struct {
	Name       string      `json:"name"`
	Aggregate  string      `json:"aggregate_id"`
	OccurredAt int64       `json:"occurred_at"`
	Payload    event.Event `json:"payload"`
}

// Publish implements event.Sink. Events for one aggregate share a partition
// key so consumers see them in order.
func (p *Publisher) Publish(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(envelope{
		Name:       ev.EventName(),
		Aggregate:  ev.AggregateID(),
		OccurredAt: ev.OccurredAt().UnixMilli(),
		Payload:    ev,
	})
	if err != nil {
		return fmt.Errorf("kafka: encode event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.prefix + ev.EventName(),
		Key:   sarama.StringEncoder(ev.AggregateID()),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka: send %s: %w", ev.EventName(), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

var _ event.Sink = (*Publisher)(nil)
