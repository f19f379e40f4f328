package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/internal/identity/store/memory"
	"github.com/aussiebroadwan/tokend/pkg/cryptox"
	"github.com/aussiebroadwan/tokend/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "tokend-test"
	testPassword = "correct horse battery staple"
)

var testAudience = []string{"api"}

func newTestService(t *testing.T) (*service.LifecycleService, *memory.Store) {
	t.Helper()

	key := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jwtx.NewSignerHS256(key)
	require.NoError(t, err)

	st := memory.NewStore()

	svc := &service.LifecycleService{
		Signer:     signer,
		Verifier:   jwtx.NewVerifierHS256(key, testIssuer, testAudience),
		Store:      st,
		Issuer:     testIssuer,
		Audience:   testAudience,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	return svc, st
}

func seedUser(t *testing.T, st *memory.Store, id, email string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	u := domain.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Roles:        []string{"staff"},
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.True(t, pair.ExpiresAt.After(time.Now()))
	require.Equal(t, "usr-1", pair.User.ID)

	claims, err := svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "usr-1", claims.Subject)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, []string{"staff"}, claims.Roles)
	require.NotEmpty(t, claims.ID)

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.Validate(ctx, "garbage")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		_, err := svc.Validate(ctx, pair.AccessToken+"x")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	first, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	t.Run("consumed pair cannot be replayed", func(t *testing.T) {
		_, err := svc.Refresh(ctx, first.AccessToken, first.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("rotation chain keeps working", func(t *testing.T) {
		third, err := svc.Refresh(ctx, second.AccessToken, second.RefreshToken)
		require.NoError(t, err)

		// Every earlier pair is dead, only the newest rotates.
		_, err = svc.Refresh(ctx, second.AccessToken, second.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)

		fourth, err := svc.Refresh(ctx, third.AccessToken, third.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, fourth.RefreshToken)
	})
}

func TestRefreshRequiresMatchingPair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	pairA, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	pairB, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	t.Run("mixed pairs rejected", func(t *testing.T) {
		// pairA's access token with pairB's refresh token: the stored jti
		// doesn't match, so the swap is refused.
		_, err := svc.Refresh(ctx, pairA.AccessToken, pairB.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)

		_, err = svc.Refresh(ctx, pairB.AccessToken, pairA.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("matched pairs still work afterwards", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pairA.AccessToken, pairA.RefreshToken)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, pairB.AccessToken, pairB.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("foreign subject cannot use the token", func(t *testing.T) {
		mallory := seedUser(t, st, "usr-2", "mallory@example.com")
		pairM, err := svc.Issue(ctx, mallory)
		require.NoError(t, err)

		pairV, err := svc.Issue(ctx, user)
		require.NoError(t, err)

		// Mallory presents their own access token with the victim's refresh
		// token. The lookup is scoped by subject, so nothing matches.
		_, err = svc.Refresh(ctx, pairM.AccessToken, pairV.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestRefreshConcurrentReplay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	const attempts = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			default:
				require.ErrorIs(t, err, service.ErrUnauthorized)
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins, "exactly one concurrent refresh may succeed")
	require.Equal(t, attempts-1, rejected)
}

func TestRefreshWithExpiredAccessToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	// Issue with an already-expired access TTL: refreshing is exactly the
	// path that must still work.
	svc.AccessTTL = -time.Minute
	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	svc.AccessTTL = jwtx.DefaultAccessTokenTTL
	fresh, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, fresh.AccessToken)
	require.NoError(t, err)
}

func TestRefreshRejectsExpiredRefreshToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	svc.RefreshTTL = -time.Minute
	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	svc.RefreshTTL = jwtx.DefaultRefreshTokenTTL
	_, err = svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestRevoke(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.AccessToken, pair.RefreshToken))

	t.Run("revoked token cannot rotate", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("revoking again is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, pair.AccessToken, pair.RefreshToken))
	})

	t.Run("revoking an unknown token reports not found", func(t *testing.T) {
		err := svc.Revoke(ctx, pair.AccessToken, "never-issued")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("another subject's token reports not found", func(t *testing.T) {
		other := seedUser(t, st, "usr-2", "bob@example.com")
		pairOther, err := svc.Issue(ctx, other)
		require.NoError(t, err)

		err = svc.Revoke(ctx, pair.AccessToken, pairOther.RefreshToken)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("invalid access token cannot revoke", func(t *testing.T) {
		err := svc.Revoke(ctx, "garbage", pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestRevokeAllForSubject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")
	other := seedUser(t, st, "usr-2", "bob@example.com")

	pair1, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	pair2, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	pairOther, err := svc.Issue(ctx, other)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForSubject(ctx, user.ID))

	_, err = svc.Refresh(ctx, pair1.AccessToken, pair1.RefreshToken)
	require.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = svc.Refresh(ctx, pair2.AccessToken, pair2.RefreshToken)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	// Unrelated subjects keep their sessions.
	_, err = svc.Refresh(ctx, pairOther.AccessToken, pairOther.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshHonoursLockMidSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, st.Users().SetLocked(ctx, user.ID, true))

	_, err = svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestRefreshReflectsRoleChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, st := newTestService(t)
	user := seedUser(t, st, "usr-1", "alice@example.com")

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	claims, err := svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{"staff"}, claims.Roles)

	// Simulate a role change between issuance and refresh. Deleting and
	// recreating is the bluntest way the memory store allows.
	require.NoError(t, st.Users().DeleteUser(ctx, user.ID))
	promoted := user
	promoted.Roles = []string{"staff", "admin"}
	require.NoError(t, st.Users().CreateUser(ctx, promoted))

	// Old refresh records were cascaded away, so issue a fresh pair and
	// rotate it: the new access token must carry the updated roles.
	pair2, err := svc.Issue(ctx, promoted)
	require.NoError(t, err)
	rotated, err := svc.Refresh(ctx, pair2.AccessToken, pair2.RefreshToken)
	require.NoError(t, err)

	claims, err = svc.Validate(ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{"staff", "admin"}, claims.Roles)
}
