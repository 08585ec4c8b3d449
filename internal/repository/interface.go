package repository

import (
	"context"

	"github.com/deep020206/FUTURE-FS-01/internal/model"
)

// DB checks that the backing store is reachable.
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository defines the persistence interface for contact messages.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	// Insert stores msg and sets msg.ID. msg.CreatedAt is persisted as given.
	Insert(ctx context.Context, msg *model.ContactMessage) error
	// ListAll returns every stored message, newest first.
	ListAll(ctx context.Context) ([]*model.ContactMessage, error)
}
