package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"github.com/google/uuid"
)

// MemoryContactRepository keeps contact messages in process memory.
// Used for local development (memory://) and tests; nothing survives a restart.
type MemoryContactRepository struct {
	mu       sync.Mutex
	messages []model.ContactMessage
}

// NewMemoryContactRepository returns an empty in-memory repository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{}
}

var _ ContactRepository = (*MemoryContactRepository)(nil)

func (r *MemoryContactRepository) Insert(ctx context.Context, msg *model.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

// ListAll returns copies ordered by CreatedAt descending; among equal
// timestamps the later insert comes first.
func (r *MemoryContactRepository) ListAll(ctx context.Context) ([]*model.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	out := make([]*model.ContactMessage, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		out = append(out, &m)
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Ping always succeeds.
func (r *MemoryContactRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
