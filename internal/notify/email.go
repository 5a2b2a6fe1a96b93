package notify

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier mails the recipient of each event through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	appURL string
}

func NewEmailNotifier(apiKey, from, appURL string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		appURL: appURL,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, event Event) error {
	if event.RecipientEmail == "" {
		return nil
	}
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{event.RecipientEmail},
		Subject: event.Subject(),
		Html:    n.body(event),
	}
	sent, err := n.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("📧 Email sent (ID: %s) for %s", sent.Id, event.Type)
	return nil
}

func (n *EmailNotifier) body(event Event) string {
	link := n.appURL
	if event.FeedbackID != "" {
		link = fmt.Sprintf("%s/feedback/%s", n.appURL, event.FeedbackID)
	}
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">%s</h2>
			<a href="%s" style="display: inline-block; background: #6366f1; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">
				Open Feedback
			</a>
		</div>
	`, html.EscapeString(event.Subject()), html.EscapeString(link))
}
