package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(ctx context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	first := &recorder{err: errors.New("smtp down")}
	second := &recorder{}
	m := Multi{first, second, NewLogNotifier()}

	err := m.Publish(context.Background(), Event{Type: CommentAdded, FeedbackID: "f1"})
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("every notifier should receive the event")
	}
}

func TestAnonymousRequestSubject(t *testing.T) {
	anon := Event{Type: FeedbackRequested, RequestID: "r1"}
	if !strings.Contains(anon.Subject(), "anonymous") {
		t.Fatalf("subject should not name the requester: %q", anon.Subject())
	}
	named := Event{Type: FeedbackRequested, RequestID: "r1", ActorID: "u1"}
	if strings.Contains(named.Subject(), "anonymous") {
		t.Fatalf("named request reported as anonymous")
	}
}

func TestEventKey(t *testing.T) {
	if k := (Event{FeedbackID: "f", RequestID: "r"}).Key(); k != "f" {
		t.Fatalf("key = %q, want feedback id", k)
	}
	if k := (Event{RequestID: "r"}).Key(); k != "r" {
		t.Fatalf("key = %q, want request id", k)
	}
}

func TestEmailNotifierSkipsWithoutAddress(t *testing.T) {
	n := NewEmailNotifier("re_test", "noreply@example.com", "http://localhost:3000")
	if err := n.Publish(context.Background(), Event{Type: FeedbackSubmitted}); err != nil {
		t.Fatalf("expected no-op without recipient email, got %v", err)
	}
}
