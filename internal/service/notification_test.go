package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"github.com/deep020206/FUTURE-FS-01/pkg/mailer"
)

type mockMailer struct {
	sent []mailer.Message
	err  error
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestMailNotifier_Notify(t *testing.T) {
	client := &mockMailer{}
	n := NewMailNotifier(client, "owner@example.net")

	msg := &model.ContactMessage{Name: "Ana", Email: "ana@x.com", Message: "hello\nthere"}
	if err := n.Notify(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(client.sent))
	}

	got := client.sent[0]
	if got.To != "owner@example.net" {
		t.Errorf("To = %q", got.To)
	}
	if got.ReplyTo != "ana@x.com" {
		t.Errorf("ReplyTo = %q", got.ReplyTo)
	}
	if got.Subject != "Portfolio Contact: Ana" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if !strings.Contains(got.HTMLBody, "hello\nthere") || !strings.Contains(got.TextBody, "hello\nthere") {
		t.Error("expected message text in both bodies")
	}
}

func TestMailNotifier_EscapesHTML(t *testing.T) {
	client := &mockMailer{}
	n := NewMailNotifier(client, "")

	msg := &model.ContactMessage{Name: "<b>x</b>", Email: "ana@x.com", Message: `<script>alert(1)</script>`}
	if err := n.Notify(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := client.sent[0].HTMLBody
	if strings.Contains(body, "<script>") || strings.Contains(body, "<b>x</b>") {
		t.Errorf("visitor input must be escaped, got %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag, got %s", body)
	}
}

func TestMailNotifier_NoReplyToForMalformedAddress(t *testing.T) {
	client := &mockMailer{}
	n := NewMailNotifier(client, "")

	if err := n.Notify(context.Background(), &model.ContactMessage{Name: "Ana", Email: "ana at x", Message: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.sent[0].ReplyTo != "" {
		t.Errorf("expected empty ReplyTo, got %q", client.sent[0].ReplyTo)
	}
}

func TestMailNotifier_PropagatesClientError(t *testing.T) {
	n := NewMailNotifier(&mockMailer{err: mailer.ErrNotConfigured}, "")

	err := n.Notify(context.Background(), &model.ContactMessage{Name: "Ana", Email: "ana@x.com", Message: "hi"})
	if !errors.Is(err, mailer.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNotificationError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := &NotificationError{Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected NotificationError to unwrap to its cause")
	}
	if err.Error() != "notification failed: dial tcp: timeout" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
