package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates JWTs signed with the shared HMAC-SHA256 key.
type HS256Verifier struct {
	key    []byte
	issuer string
	aud    []string
}

// NewVerifierHS256 creates a verifier bound to the shared key, expected
// issuer, and expected audience values.
func NewVerifierHS256(key []byte, issuer string, aud []string) *HS256Verifier {
	return &HS256Verifier{key: key, issuer: issuer, aud: aud}
}

// Verify validates the JWT string with expiry enforced.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	return v.verify(tokenStr, true)
}

// VerifyIgnoringExpiry validates signature, issuer, and audience but skips
// the exp/nbf checks. Refresh path only.
func (v *HS256Verifier) VerifyIgnoringExpiry(tokenStr string) (Claims, error) {
	return v.verify(tokenStr, false)
}

func (v *HS256Verifier) verify(tokenStr string, checkExpiry bool) (Claims, error) {
	// Claims validation is done manually below so the expired-but-valid mode
	// shares one parse path with full verification. The parser still verifies
	// the signature and pins the accepted algorithm, which closes the
	// algorithm-confusion class: a token declaring any other alg (including
	// "none") never reaches the claim checks.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: got %q", ErrAlgMismatch, t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	if err := validateClaims(claims, v.issuer, v.aud, checkExpiry); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// mapParseError folds golang-jwt parse failures into our sentinel taxonomy.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}
}
