package repository

import (
	"context"

	"github.com/deep020206/FUTURE-FS-01/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Insert adds a contact_messages row and populates msg.ID from the RETURNING clause.
func (r *PgContactRepository) Insert(ctx context.Context, msg *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, message, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id::text`,
		msg.Name, msg.Email, msg.Message, msg.CreatedAt,
	).Scan(&msg.ID)
}

// ListAll returns all contact messages ordered by created_at descending.
// Equal timestamps come back in reverse insert order (seq).
func (r *PgContactRepository) ListAll(ctx context.Context) ([]*model.ContactMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, name, email, message, created_at
		 FROM contact_messages
		 ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
