package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokend/pkg/cryptox"
	"github.com/aussiebroadwan/tokend/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef") // 32 bytes
}

func TestHS256SignerValidation(t *testing.T) {
	t.Parallel()

	t.Run("accepts a 32 byte key", func(t *testing.T) {
		signer, err := jwtx.NewSignerHS256(testKey())
		require.NoError(t, err)
		require.Equal(t, "HS256", signer.Alg())
	})

	t.Run("rejects an empty key", func(t *testing.T) {
		_, err := jwtx.NewSignerHS256(nil)
		require.Error(t, err)
	})

	t.Run("rejects a short key", func(t *testing.T) {
		_, err := jwtx.NewSignerHS256([]byte("too-short"))
		require.Error(t, err)
	})
}

func TestHS256SignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHS256(testKey())
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewIdentityClaims(
		"user-456",
		"bob@example.com",
		"Bob Builder",
		[]string{"staff"},
		5*time.Minute,
		exampleIssuer,
		[]string{"api"},
		now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verifier := jwtx.NewVerifierHS256(testKey(), exampleIssuer, []string{"api"})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)

	require.Equal(t, claims.Issuer, parsed.Issuer)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.ElementsMatch(t, claims.Audience, parsed.Audience)
	require.Equal(t, claims.Email, parsed.Email)
	require.Equal(t, claims.Name, parsed.Name)
	require.ElementsMatch(t, claims.Roles, parsed.Roles)
	require.Equal(t, claims.ID, parsed.ID) // jti round-trips
}

func TestHS256VerifyIgnoringExpiry(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHS256(testKey())
	require.NoError(t, err)

	// Issue a token that expired ten minutes ago.
	now := time.Now().UTC().Add(-15 * time.Minute)
	claims := jwtx.NewIdentityClaims(
		"user-789", "c@example.com", "", nil,
		5*time.Minute, exampleIssuer, []string{"api"}, now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifierHS256(testKey(), exampleIssuer, []string{"api"})

	t.Run("full verify rejects it", func(t *testing.T) {
		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("ignore-expiry mode accepts it", func(t *testing.T) {
		parsed, err := verifier.VerifyIgnoringExpiry(token)
		require.NoError(t, err)
		require.Equal(t, claims.ID, parsed.ID)
		require.Equal(t, "user-789", parsed.Subject)
	})

	t.Run("ignore-expiry mode still checks issuer", func(t *testing.T) {
		wrongIssuer := jwtx.NewVerifierHS256(testKey(), "someone-else", []string{"api"})
		_, err := wrongIssuer.VerifyIgnoringExpiry(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("ignore-expiry mode still checks audience", func(t *testing.T) {
		wrongAud := jwtx.NewVerifierHS256(testKey(), exampleIssuer, []string{"admin"})
		_, err := wrongAud.VerifyIgnoringExpiry(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("ignore-expiry mode still checks signature", func(t *testing.T) {
		otherKey := jwtx.NewVerifierHS256([]byte("ffffffffffffffffffffffffffffffff"), exampleIssuer, []string{"api"})
		_, err := otherKey.VerifyIgnoringExpiry(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})
}

func TestHS256VerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHS256(testKey())
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewIdentityClaims(
		"user-1", "a@example.com", "", nil,
		time.Minute, exampleIssuer, []string{"api"}, now,
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifierHS256(testKey(), exampleIssuer, []string{"api"})

	t.Run("garbage input", func(t *testing.T) {
		_, err := verifier.Verify("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		tampered := token[:len(token)-2] + "xx"
		_, err := verifier.Verify(tampered)
		require.Error(t, err)
	})
}

func TestHS256RejectsAlgorithmConfusion(t *testing.T) {
	t.Parallel()

	verifier := jwtx.NewVerifierHS256(testKey(), exampleIssuer, []string{"api"})

	now := time.Now().UTC()
	claims := jwtx.NewIdentityClaims(
		"user-1", "a@example.com", "", nil,
		time.Minute, exampleIssuer, []string{"api"}, now,
	)

	t.Run("unsigned token rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, verr := verifier.Verify(token)
		require.Error(t, verr)
	})

	t.Run("EdDSA token rejected even if well formed", func(t *testing.T) {
		pemKey, err := cryptox.GenerateEd25519Key()
		require.NoError(t, err)

		edSigner, err := jwtx.NewSignerEdDSA(pemKey)
		require.NoError(t, err)

		token, err := edSigner.Sign(claims)
		require.NoError(t, err)

		_, verr := verifier.Verify(token)
		require.Error(t, verr)
	})
}
