package model

import "time"

// ContactMessage represents a message submitted via the portfolio contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationStatus describes what happened to the email relay for a submission.
type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationSkipped NotificationStatus = "skipped"
	NotificationFailed  NotificationStatus = "failed"
)

// SubmissionResult is the outcome of a successful (persisted) submission.
type SubmissionResult struct {
	Contact      *ContactMessage
	Notification NotificationStatus
	// Message is the human-readable status returned to the visitor.
	Message string
}

// EmailSent reports whether the notification email was delivered to the relay.
func (r *SubmissionResult) EmailSent() bool {
	return r.Notification == NotificationSent
}
