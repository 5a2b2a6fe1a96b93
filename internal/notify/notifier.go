// Package notify delivers workflow events to people and downstream systems.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	FeedbackSubmitted    EventType = "feedback.submitted"
	FeedbackAcknowledged EventType = "feedback.acknowledged"
	FeedbackRequested    EventType = "feedback.requested"
	RequestResolved      EventType = "feedback_request.resolved"
	CommentAdded         EventType = "comment.added"
)

// Event describes something a participant should hear about. ActorID is empty
// when the actor asked to stay anonymous.
type Event struct {
	Type           EventType `json:"type"`
	FeedbackID     string    `json:"feedback_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	RecipientID    string    `json:"recipient_id"`
	RecipientEmail string    `json:"-"`
	Detail         string    `json:"detail,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Key groups events about the same record on a partitioned stream.
func (e Event) Key() string {
	if e.FeedbackID != "" {
		return e.FeedbackID
	}
	return e.RequestID
}

// Subject is a one-line human summary of the event.
func (e Event) Subject() string {
	switch e.Type {
	case FeedbackSubmitted:
		return "You have received new feedback"
	case FeedbackAcknowledged:
		return "Your feedback was acknowledged"
	case FeedbackRequested:
		if e.ActorID == "" {
			return "An anonymous team member requested feedback"
		}
		return "A team member requested feedback"
	case RequestResolved:
		return fmt.Sprintf("Your feedback request was %s", e.Detail)
	case CommentAdded:
		return "New comment on feedback"
	default:
		return string(e.Type)
	}
}

// Notifier defines the interface for publishing workflow events.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// Multi publishes to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
