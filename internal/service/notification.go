package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/deep020206/FUTURE-FS-01/internal/intake"
	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"github.com/deep020206/FUTURE-FS-01/pkg/mailer"
)

var notificationTemplate = template.Must(template.New("contact").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">New Portfolio Contact Message</h2>
  <div style="background: #f3f4f6; padding: 20px; border-radius: 8px;">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Message:</strong></p>
    <p style="background: white; padding: 15px; border-radius: 4px; white-space: pre-wrap;">{{.Message}}</p>
  </div>
  <p style="color: #6b7280; font-size: 14px; margin-top: 20px;">
    This message was sent from your portfolio website.
  </p>
</div>
`))

// MailNotifier emails each contact message to the site owner.
type MailNotifier struct {
	client mailer.Client
	to     string
}

// NewMailNotifier returns a notifier sending to `to` through client.
// An empty `to` lets the client fall back to its sender address.
func NewMailNotifier(client mailer.Client, to string) *MailNotifier {
	return &MailNotifier{client: client, to: to}
}

var _ Notifier = (*MailNotifier)(nil)

func (n *MailNotifier) Notify(ctx context.Context, msg *model.ContactMessage) error {
	out, err := composeNotification(msg)
	if err != nil {
		return err
	}
	out.To = n.to
	return n.client.Send(ctx, out)
}

func composeNotification(msg *model.ContactMessage) (mailer.Message, error) {
	var html bytes.Buffer
	if err := notificationTemplate.Execute(&html, msg); err != nil {
		return mailer.Message{}, fmt.Errorf("render notification: %w", err)
	}

	out := mailer.Message{
		Subject:  "Portfolio Contact: " + msg.Name,
		HTMLBody: html.String(),
		TextBody: fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", msg.Name, msg.Email, msg.Message),
	}
	// skip Reply-To when the address was accepted without a format check
	if intake.ValidEmail(msg.Email) {
		out.ReplyTo = msg.Email
	}
	return out, nil
}
