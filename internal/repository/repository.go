package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/deep020206/FUTURE-FS-01/internal/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// NewPool creates a PostgreSQL pool and pings it.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// NewMongoClient connects to MongoDB and verifies the primary is reachable.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// OpenOptions tunes Open for backends that need more than the URL.
type OpenOptions struct {
	// MongoDatabase is used when a mongodb URL carries no database path.
	MongoDatabase string
}

// Store owns the storage connection for the process lifetime.
type Store struct {
	Contacts ContactRepository
	// Backend is the URL scheme family: "postgres", "mongodb" or "memory".
	Backend string

	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

var _ DB = (*Store)(nil)

// Open connects to the database named by rawURL. Supported schemes are
// postgres/postgresql, mongodb/mongodb+srv and memory.
func Open(ctx context.Context, rawURL string, opts OpenOptions) (*Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		pool, err := NewPool(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Store{
			Contacts: NewPgContactRepository(pool),
			Backend:  "postgres",
			ping:     pool.Ping,
			migrate: func(ctx context.Context) error {
				db := stdlib.OpenDBFromPool(pool)
				defer db.Close()
				return migrations.Up(ctx, db)
			},
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case "mongodb", "mongodb+srv":
		client, err := NewMongoClient(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		dbName := strings.TrimPrefix(u.Path, "/")
		if dbName == "" {
			dbName = opts.MongoDatabase
		}
		if dbName == "" {
			dbName = "portfolio"
		}
		repo := NewMongoContactRepository(client.Database(dbName))
		return &Store{
			Contacts: repo,
			Backend:  "mongodb",
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
			migrate: repo.EnsureIndexes,
			close:   client.Disconnect,
		}, nil

	case "memory":
		repo := NewMemoryContactRepository()
		return &Store{
			Contacts: repo,
			Backend:  "memory",
			ping:     repo.Ping,
			migrate:  func(context.Context) error { return nil },
			close:    func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Migrate brings the schema (or indexes) up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Close releases the connection.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
