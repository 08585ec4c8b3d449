package service

import (
	"context"
	"errors"

	"github.com/deep020206/FUTURE-FS-01/internal/model"
)

// ErrPersistence wraps storage failures. Nothing else has happened when it is returned.
var ErrPersistence = errors.New("persistence failed")

// NotificationError wraps a failed relay attempt. It is logged, never returned to callers.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return "notification failed: " + e.Err.Error()
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Notifier relays a stored contact message to the site owner.
// Returning mailer.ErrNotConfigured means the channel is switched off.
type Notifier interface {
	Notify(ctx context.Context, msg *model.ContactMessage) error
}

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates, stores and relays a contact message. The returned
	// error is an *intake.ValidationError or wraps ErrPersistence; a failed
	// relay is reported through the result, not the error.
	Submit(ctx context.Context, msg *model.ContactMessage) (*model.SubmissionResult, error)

	// List returns every contact message, newest first.
	List(ctx context.Context) ([]*model.ContactMessage, error)
}
