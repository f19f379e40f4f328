package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/service"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/internal/identity/store/memory"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleansExpiredTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := memory.NewStore()

	stale := domain.RefreshToken{
		ID:        "rt-stale",
		SubjectID: "usr-1",
		TokenHash: "hash-stale",
		JTI:       "jti-stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	live := domain.RefreshToken{
		ID:        "rt-live",
		SubjectID: "usr-1",
		TokenHash: "hash-live",
		JTI:       "jti-live",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, stale))
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, live))

	hk := service.NewHousekeepingService(st, slog.Default(), time.Hour)
	hk.Start() // runs one cleanup immediately
	hk.Stop()

	_, err := st.RefreshTokens().GetRefreshToken(ctx, "hash-stale", "usr-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.RefreshTokens().GetRefreshToken(ctx, "hash-live", "usr-1")
	require.NoError(t, err)
}

func TestHousekeepingDefaultsInterval(t *testing.T) {
	t.Parallel()

	hk := service.NewHousekeepingService(memory.NewStore(), slog.Default(), 0)
	require.Equal(t, time.Hour, hk.Interval)
}
