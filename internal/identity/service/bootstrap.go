package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/pkg/cryptox"
	"github.com/aussiebroadwan/tokend/pkg/idx"
	"github.com/aussiebroadwan/tokend/pkg/slogx"
)

var ErrBootstrapAlready = errors.New("system already bootstrapped")

// BootstrapService seeds the very first user so a fresh deployment has an
// account to log in with. It only runs against an empty user table.
type BootstrapService struct {
	Store store.Store
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the seed admin user. Returns the new user's ID, or
// ErrBootstrapAlready when any user already exists.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	email, password, name string,
) (string, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", errors.New("bootstrap requires email and password")
	}

	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash bootstrap password", slog.Any("error", err))
		return "", err
	}

	userID := idx.New().String()

	// Emptiness check and insert share a transaction so two racing starts
	// can't both seed a user.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		return tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			Email:        email,
			Name:         name,
			PasswordHash: passHash,
			Roles:        []string{"admin"},
		})
	})
	if err != nil {
		return "", err
	}

	l.Info("seeded bootstrap user", slog.String("user_id", userID))
	return userID, nil
}
