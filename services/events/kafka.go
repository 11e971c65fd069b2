package eventsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// KafkaPublisher writes events as JSON messages keyed by Event.Key, so that the events of
// one aggregate stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

var _ core.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(conf core.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.Brokers...),
			Topic:                  conf.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...core.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		val, err := json.Marshal(evt)
		if err != nil {
			return errors.Wrap(err, "marshalling event")
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(evt.Key),
			Value:   val,
			Headers: []kafka.Header{{Key: "name", Value: []byte(evt.Name)}},
			Time:    evt.OccurredAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("writing %d event(s)", len(msgs)))
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
