package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
	"github.com/aussiebroadwan/tokend/pkg/cryptox"
	"github.com/aussiebroadwan/tokend/pkg/idx"
	"github.com/aussiebroadwan/tokend/pkg/jwtx"
	"github.com/aussiebroadwan/tokend/pkg/slogx"
)

// maxTokenAttempts bounds the retry loop when a freshly generated refresh
// token fingerprint collides with a stored one.
const maxTokenAttempts = 5

var (
	// ErrUnauthorized is the single error surfaced for any verification or
	// rotation failure. Collapsing the detail keeps the API from acting as
	// an oracle for attackers probing stolen tokens.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountLocked      = errors.New("account_locked")

	// ErrTokenCollision is returned when token generation keeps colliding
	// with stored fingerprints, which indicates a broken entropy source.
	ErrTokenCollision = errors.New("refresh token fingerprint collision")
)

// LifecycleService owns the full life of a token pair: issuance after
// authentication, single-use refresh rotation, validation, and revocation.
type LifecycleService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store

	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue signs a fresh access token for the user and persists a refresh token
// bound to it via the jti claim.
func (s *LifecycleService) Issue(ctx context.Context, user domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	claims := jwtx.NewIdentityClaims(
		user.ID, user.Email, user.Name, user.Roles,
		s.AccessTTL, s.Issuer, s.Audience, now,
	)

	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := s.createRefreshToken(ctx, user.ID, claims.ID, now)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         user.Info(),
	}, nil
}

// Refresh rotates a token pair. The expired (or expiring) access token and
// its paired refresh token must be presented together; the refresh token is
// consumed whether or not a new pair is ultimately produced.
//
// The consume step is a conditional state transition in the store, so when
// the same refresh token is presented concurrently exactly one caller
// receives a new pair and the rest get ErrUnauthorized.
func (s *LifecycleService) Refresh(ctx context.Context, accessToken, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	// Signature, issuer, and audience still count; only exp/nbf are waived,
	// since refreshing an expired access token is the point of the exercise.
	claims, err := s.Verifier.VerifyIgnoringExpiry(accessToken)
	if err != nil {
		l.Info("refresh rejected: access token failed verification", "err", err)
		return nil, ErrUnauthorized
	}

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshToken(ctx, fp, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh rejected: no matching token record",
				slog.String("subject", claims.Subject))
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !rt.Active(now) {
		l.Info("refresh rejected: token not active",
			slog.String("subject", claims.Subject),
			slog.Bool("used", rt.Used),
			slog.Bool("revoked", rt.Revoked),
		)
		return nil, ErrUnauthorized
	}

	// A refresh token only rotates alongside the exact access token it was
	// issued with. A mismatched jti means the pair was split up.
	if rt.JTI != claims.ID {
		l.Warn("refresh rejected: jti binding mismatch",
			slog.String("subject", claims.Subject))
		return nil, ErrUnauthorized
	}

	// Consume the token. Deliberately not wrapped in a transaction with the
	// issuance below: if issuance fails the token must stay consumed rather
	// than roll back to a presentable state.
	if err := s.Store.RefreshTokens().MarkRefreshTokenUsed(ctx, rt.ID); err != nil {
		if errors.Is(err, store.ErrAlreadyConsumed) || errors.Is(err, store.ErrNotFound) {
			l.Info("refresh rejected: lost consume race",
				slog.String("subject", claims.Subject))
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	// Re-load the user so the new access token carries current roles and the
	// lock flag is honoured even mid-session.
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if user.Locked {
		l.Warn("refresh rejected: account locked", slog.String("subject", user.ID))
		return nil, ErrUnauthorized
	}

	return s.Issue(ctx, user)
}

// Validate verifies an access token in full (signature, issuer, audience,
// expiry) and returns its claims. Any failure surfaces as ErrUnauthorized.
func (s *LifecycleService) Validate(ctx context.Context, accessToken string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		slogx.FromContext(ctx).Info("validate rejected", "err", err)
		return jwtx.Claims{}, ErrUnauthorized
	}
	return claims, nil
}

// Revoke permanently invalidates a single refresh token. The caller proves
// ownership by presenting the paired access token. A token with no record
// surfaces store.ErrNotFound: the lookup is already scoped to the verified
// subject, so the answer only ever describes the caller's own tokens.
// Revoking an already-revoked record succeeds.
func (s *LifecycleService) Revoke(ctx context.Context, accessToken, refreshOpaque string) error {
	claims, err := s.Verifier.VerifyIgnoringExpiry(accessToken)
	if err != nil {
		return ErrUnauthorized
	}

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshToken(ctx, fp, claims.Subject)
	if err != nil {
		return err
	}

	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, rt.ID)
}

// RevokeAllForSubject bulk-revokes every refresh token a subject holds.
// Used for logout-everywhere and after password changes.
func (s *LifecycleService) RevokeAllForSubject(ctx context.Context, subjectID string) error {
	return s.Store.RefreshTokens().RevokeAllSubjectRefreshTokens(ctx, subjectID)
}

// createRefreshToken generates the opaque refresh token and persists its
// fingerprint. A fingerprint collision with an existing row is astronomically
// unlikely but cheap to retry, so we do.
func (s *LifecycleService) createRefreshToken(
	ctx context.Context,
	subjectID, jti string,
	now time.Time,
) (string, error) {
	l := slogx.FromContext(ctx)

	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		opaque, err := cryptox.GenerateToken(cryptox.TokenSize512)
		if err != nil {
			return "", err
		}

		rt := domain.RefreshToken{
			ID:        idx.New().String(),
			SubjectID: subjectID,
			TokenHash: cryptox.FingerprintToken(opaque),
			JTI:       jti,
			ExpiresAt: now.Add(s.RefreshTTL),
		}

		err = s.Store.RefreshTokens().CreateRefreshToken(ctx, rt)
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("refresh token fingerprint collision, regenerating",
				slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return "", err
		}
		return opaque, nil
	}

	return "", ErrTokenCollision
}
