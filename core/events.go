package core

import (
	"context"
	"time"
)

// Event names
const (
	EventAssessmentCreated     = "assessment.created"
	EventAssessmentActivated   = "assessment.activated"
	EventAssessmentDeactivated = "assessment.deactivated"
	EventAssessmentCompleted   = "assessment.completed"
	EventAssessmentMarked      = "assessment.marked"
	EventAssessmentDeleted     = "assessment.deleted"
	EventSubmissionReceived    = "submission.received"
	EventEnrollmentApproved    = "enrollment.approved"
)

// Event is a domain event published after a successful state change.
type Event struct {
	Name       string            `json:"name"`
	Key        string            `json:"key"` // partitioning key, usually the aggregate ID
	ActorID    string            `json:"actor_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewEvent(name, key, actorID string, data map[string]string) Event {
	return Event{Name: name, Key: key, ActorID: actorID, Data: data, OccurredAt: time.Now().UTC()}
}

// EventPublisher is any service that can publish domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}
