package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokend/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "tokend"

func TestNewIdentityClaims(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	c := jwtx.NewIdentityClaims(
		"user-123",
		"alice@example.com",
		"Alice Example",
		[]string{"admin", "staff"},
		time.Hour,
		exampleIssuer,
		[]string{"api"},
		now,
	)

	t.Run("carries the subject identity", func(t *testing.T) {
		require.Equal(t, "user-123", c.Subject)
		require.Equal(t, "alice@example.com", c.Email)
		require.Equal(t, "Alice Example", c.Name)
		require.Equal(t, []string{"admin", "staff"}, c.Roles)
	})

	t.Run("sets registered claims", func(t *testing.T) {
		require.Equal(t, exampleIssuer, c.Issuer)
		require.ElementsMatch(t, []string{"api"}, c.Audience)
		require.Equal(t, now.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
		require.Equal(t, now.Unix(), c.NotBefore.Unix())
	})

	t.Run("mints exactly one jti", func(t *testing.T) {
		require.NotEmpty(t, c.ID)
	})

	t.Run("jti is fresh per call", func(t *testing.T) {
		other := jwtx.NewIdentityClaims(
			"user-123", "alice@example.com", "Alice Example", nil,
			time.Hour, exampleIssuer, []string{"api"}, now,
		)
		require.NotEqual(t, c.ID, other.ID)
	})
}

func TestValidateIssuer(t *testing.T) {
	t.Parallel()

	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: exampleIssuer,
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(exampleIssuer))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("some-other-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	t.Parallel()

	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"orders", "inventory"},
		},
	}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"orders"}))
	})

	t.Run("no match", func(t *testing.T) {
		err := c.ValidateAudience([]string{"admin"})
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("empty expected list", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience(nil))
	})
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		claims := &jwtx.Claims{}
		require.NoError(t, claims.ValidateExpiry())
	})
}
