package eventsvc

import (
	"context"
	"sync"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// LogPublisher logs events instead of publishing them. Used when no broker is configured.
type LogPublisher struct {
	logger core.Logger
}

var _ core.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger core.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, events ...core.Event) error {
	for _, evt := range events {
		p.logger.Debug("event "+evt.Name, map[string]interface{}{
			"key":      evt.Key,
			"actor_id": evt.ActorID,
			"data":     evt.Data,
		})
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
}

var _ core.EventPublisher = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(_ context.Context, events ...core.Event) error {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the names of the recorded events, in publication order.
func (r *Recorder) Names() []string {
	events := r.Events()
	names := make([]string, 0, len(events))
	for _, evt := range events {
		names = append(names, evt.Name)
	}
	return names
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// New returns a kafka publisher when brokers are configured, a LogPublisher otherwise.
func New(conf core.KafkaConfig, logger core.Logger) core.EventPublisher {
	if len(conf.Brokers) == 0 {
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(conf)
}
