package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrAlreadyConsumed is returned when a conditional state change loses
	// the race: the refresh token row exists but was already used or revoked.
	ErrAlreadyConsumed = errors.New("store: already consumed")
)

// Store is the root data access interface. Concrete drivers (sqlite, memory)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g. refresh
	// rotation). The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during password authentication.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetLocked flips the locked flag and bumps updated_at.
	SetLocked(ctx context.Context, userID string, locked bool) error

	// DeleteUser cascades to refresh_tokens (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record. Returns
	// ErrAlreadyExists if a record with the same token hash is present,
	// which callers treat as a fingerprint collision and retry.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshToken returns the record matching both the token fingerprint
	// and the subject it was issued to. Lookups are scoped to the subject so
	// a token can never resolve against another account's records.
	GetRefreshToken(ctx context.Context, tokenHash, subjectID string) (domain.RefreshToken, error)

	// MarkRefreshTokenUsed conditionally transitions the record to used.
	// The update only applies if the record is currently neither used nor
	// revoked; a lost race returns ErrAlreadyConsumed. Under concurrent
	// presentation of the same token exactly one caller wins.
	MarkRefreshTokenUsed(ctx context.Context, id string) error

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, id string) error

	// RevokeAllSubjectRefreshTokens bulk-revokes every active token for a
	// subject (e.g. password reset, logout everywhere).
	RevokeAllSubjectRefreshTokens(ctx context.Context, subjectID string) error

	// DeleteExpiredRefreshTokens removes rows past their expiry. Housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
