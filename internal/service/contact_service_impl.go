package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deep020206/FUTURE-FS-01/internal/intake"
	"github.com/deep020206/FUTURE-FS-01/internal/metrics"
	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"github.com/deep020206/FUTURE-FS-01/internal/repository"
	"github.com/deep020206/FUTURE-FS-01/pkg/mailer"
)

const defaultNotifyTimeout = 10 * time.Second

// Status messages shown to the visitor.
const (
	MessageEmailSent    = "Message sent successfully! Email notification delivered."
	MessageEmailSkipped = "Message received and saved successfully! I'll get back to you via email."
	MessageEmailFailed  = "Message saved! (Email notification failed - please check email setup)"
)

// ContactServiceConfig carries the optional collaborators of the contact service.
type ContactServiceConfig struct {
	Validator     intake.Validator
	NotifyTimeout time.Duration
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	// Now stamps CreatedAt; defaults to time.Now.
	Now func() time.Time
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo          repository.ContactRepository
	notifier      Notifier
	validator     intake.Validator
	notifyTimeout time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewContactService creates a ContactService backed by the given repository.
// notifier may be nil, which behaves like an unconfigured channel.
func NewContactService(repo repository.ContactRepository, notifier Notifier, cfg ContactServiceConfig) ContactService {
	s := &contactServiceImpl{
		repo:          repo,
		notifier:      notifier,
		validator:     cfg.Validator,
		notifyTimeout: cfg.NotifyTimeout,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		now:           cfg.Now,
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit trims and validates msg, persists it with a fresh CreatedAt, then
// attempts the notification.
func (s *contactServiceImpl) Submit(ctx context.Context, msg *model.ContactMessage) (*model.SubmissionResult, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	if err := s.validator.Validate(msg.Name, msg.Email, msg.Message); err != nil {
		s.metrics.IncrementSubmission(metrics.ResultRejected)
		return nil, err
	}

	msg.CreatedAt = s.now().UTC()
	if err := s.repo.Insert(ctx, msg); err != nil {
		s.metrics.IncrementSubmission(metrics.ResultFailed)
		return nil, fmt.Errorf("%w: insert contact message: %w", ErrPersistence, err)
	}
	s.metrics.IncrementSubmission(metrics.ResultAccepted)
	s.logger.InfoContext(ctx, "contact message saved",
		"id", msg.ID,
		"name", msg.Name,
		"email", msg.Email,
		"created_at", msg.CreatedAt,
	)

	status := s.notify(ctx, msg)
	return &model.SubmissionResult{
		Contact:      msg,
		Notification: status,
		Message:      statusMessage(status),
	}, nil
}

// notify runs the relay detached from request cancellation but bounded by
// notifyTimeout. The message is already stored.
func (s *contactServiceImpl) notify(ctx context.Context, msg *model.ContactMessage) model.NotificationStatus {
	if s.notifier == nil {
		s.metrics.IncrementNotification(string(model.NotificationSkipped))
		return model.NotificationSkipped
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	start := time.Now()
	err := s.notifier.Notify(nctx, msg)
	s.metrics.ObserveNotifyLatency(time.Since(start))

	var status model.NotificationStatus
	switch {
	case err == nil:
		status = model.NotificationSent
		s.logger.InfoContext(ctx, "email notification sent", "id", msg.ID)
	case errors.Is(err, mailer.ErrNotConfigured):
		status = model.NotificationSkipped
		s.logger.WarnContext(ctx, "email credentials not configured; notification skipped", "id", msg.ID)
	default:
		status = model.NotificationFailed
		s.logger.WarnContext(ctx, "email notification failed",
			"id", msg.ID,
			"error", &NotificationError{Err: err},
		)
	}
	s.metrics.IncrementNotification(string(status))
	return status
}

func statusMessage(status model.NotificationStatus) string {
	switch status {
	case model.NotificationSent:
		return MessageEmailSent
	case model.NotificationFailed:
		return MessageEmailFailed
	default:
		return MessageEmailSkipped
	}
}

// List returns all contact messages, newest first.
func (s *contactServiceImpl) List(ctx context.Context) ([]*model.ContactMessage, error) {
	messages, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list contact messages: %w", ErrPersistence, err)
	}
	return messages, nil
}
