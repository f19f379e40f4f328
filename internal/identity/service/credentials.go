package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/pkg/cryptox"
	"github.com/aussiebroadwan/tokend/pkg/slogx"
)

// Login authenticates a user by email and password and issues a token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *LifecycleService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown emails don't answer faster
			// than known ones with a wrong password.
			cryptox.DummyVerifyPassword(password)
			l.Info("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed: password mismatch", slog.String("subject", user.ID))
		return nil, ErrInvalidCredentials
	}

	if user.Locked {
		l.Warn("login refused: account locked", slog.String("subject", user.ID))
		return nil, ErrAccountLocked
	}

	return s.Issue(ctx, user)
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every outstanding refresh token so stolen pairs die with the old
// password.
func (s *LifecycleService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, newHash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllSubjectRefreshTokens(ctx, userID)
	})
}
