package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	seedUser(t, st, "usr-1", "alice@example.com")

	t.Run("valid credentials issue a pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice@example.com", testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "alice@example.com", pair.User.Email)
	})

	t.Run("email is case and whitespace insensitive", func(t *testing.T) {
		pair, err := svc.Login(ctx, "  Alice@Example.COM ", testPassword)
		require.NoError(t, err)
		require.Equal(t, "usr-1", pair.User.ID)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", testPassword)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("empty credentials rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("locked account refused with correct password", func(t *testing.T) {
		require.NoError(t, st.Users().SetLocked(ctx, "usr-1", true))
		defer func() {
			require.NoError(t, st.Users().SetLocked(ctx, "usr-1", false))
		}()

		_, err := svc.Login(ctx, "alice@example.com", testPassword)
		require.ErrorIs(t, err, service.ErrAccountLocked)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	seedUser(t, st, "usr-1", "alice@example.com")

	pair, err := svc.Login(ctx, "alice@example.com", testPassword)
	require.NoError(t, err)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "usr-1", "wrong", "new-password")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("change revokes outstanding sessions", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, "usr-1", testPassword, "new-password"))

		// Old refresh token died with the old password.
		_, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)

		// Old password no longer works, new one does.
		_, err = svc.Login(ctx, "alice@example.com", testPassword)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = svc.Login(ctx, "alice@example.com", "new-password")
		require.NoError(t, err)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "ghost", testPassword, "x")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}
