package notify

import (
	"context"
	"log"
)

// LogNotifier writes events to the process log. It is the default when no
// delivery channel is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Publish(ctx context.Context, event Event) error {
	log.Printf("📨 [notify] %s → %s: %s", event.Type, event.RecipientID, event.Subject())
	return nil
}
