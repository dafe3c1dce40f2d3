package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres, MongoDB) owns its own schema
// or index setup, so the storage backend is swappable from configuration.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Store is a Database that vends the repositories the services need.
type Store interface {
	Database
	Users() UserRepository
	Todos() TodoRepository
}
