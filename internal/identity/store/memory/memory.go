// Package memory provides a mutex-guarded in-memory Store implementation.
// It mirrors the sqlite driver's semantics closely enough to back unit tests
// without touching disk, including the conditional mark-used transition.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
)

type Store struct {
	mu            sync.Mutex
	users         map[string]domain.User         // keyed by id
	usersByEmail  map[string]string              // email -> id
	refreshTokens map[string]domain.RefreshToken // keyed by id
	byHash        map[string]string              // token_hash -> id
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]domain.User),
		usersByEmail:  make(map[string]string),
		refreshTokens: make(map[string]domain.RefreshToken),
		byHash:        make(map[string]string),
	}
}

func (s *Store) Users() store.Users                 { return &usersRepo{s: s} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{s: s} }

func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

// Tx returns the store itself with no-op transaction control. The single
// mutex already serialises every operation, which is enough for tests.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	return &memTx{s}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return fn(&memTx{s})
}

type memTx struct{ *Store }

func (t *memTx) Commit() error   { return nil }
func (t *memTx) Rollback() error { return nil }

type usersRepo struct {
	s *Store
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.usersByEmail[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return r.s.users[id], nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return store.ErrAlreadyExists
	}
	if _, ok := r.s.usersByEmail[u.Email]; ok {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = u
	r.s.usersByEmail[u.Email] = u.ID
	return nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = newHash
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

func (r *usersRepo) SetLocked(ctx context.Context, userID string, locked bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Locked = locked
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil
	}
	delete(r.s.users, userID)
	delete(r.s.usersByEmail, u.Email)

	// Cascade, matching the sqlite schema.
	for id, t := range r.s.refreshTokens {
		if t.SubjectID == userID {
			delete(r.s.refreshTokens, id)
			delete(r.s.byHash, t.TokenHash)
		}
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users) == 0, nil
}

type refreshTokensRepo struct {
	s *Store
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byHash[t.TokenHash]; ok {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.s.refreshTokens[t.ID] = t
	r.s.byHash[t.TokenHash] = t.ID
	return nil
}

func (r *refreshTokensRepo) GetRefreshToken(
	ctx context.Context,
	tokenHash, subjectID string,
) (domain.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.byHash[tokenHash]
	if !ok {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	t := r.s.refreshTokens[id]
	if t.SubjectID != subjectID {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	return t, nil
}

func (r *refreshTokensRepo) MarkRefreshTokenUsed(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.refreshTokens[id]
	if !ok {
		return store.ErrNotFound
	}
	if t.Used || t.Revoked {
		return store.ErrAlreadyConsumed
	}
	t.Used = true
	t.UpdatedAt = time.Now().UTC()
	r.s.refreshTokens[id] = t
	return nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.refreshTokens[id]
	if !ok {
		return nil
	}
	t.Revoked = true
	t.UpdatedAt = time.Now().UTC()
	r.s.refreshTokens[id] = t
	return nil
}

func (r *refreshTokensRepo) RevokeAllSubjectRefreshTokens(ctx context.Context, subjectID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for id, t := range r.s.refreshTokens {
		if t.SubjectID == subjectID && !t.Revoked {
			t.Revoked = true
			t.UpdatedAt = now
			r.s.refreshTokens[id] = t
		}
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for id, t := range r.s.refreshTokens {
		if t.ExpiresAt.Before(now) {
			delete(r.s.refreshTokens, id)
			delete(r.s.byHash, t.TokenHash)
		}
	}
	return nil
}
