package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates JWTs signed using EdDSA (Ed25519).
type EdDSAVerifier struct {
	pub    ed25519.PublicKey
	issuer string
	aud    []string
}

// NewVerifierEdDSA creates a verifier bound to an Ed25519 public key, expected
// issuer, and expected audience values.
func NewVerifierEdDSA(pub ed25519.PublicKey, issuer string, aud []string) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub, issuer: issuer, aud: aud}
}

// Verify validates the JWT string with expiry enforced.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	return v.verify(tokenStr, true)
}

// VerifyIgnoringExpiry validates signature, issuer, and audience but skips
// the exp/nbf checks. Refresh path only.
func (v *EdDSAVerifier) VerifyIgnoringExpiry(tokenStr string) (Claims, error) {
	return v.verify(tokenStr, false)
}

func (v *EdDSAVerifier) verify(tokenStr string, checkExpiry bool) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("%w: got %q", ErrAlgMismatch, t.Method.Alg())
		}
		if len(v.pub) != ed25519.PublicKeySize {
			return nil, errors.New("jwtx: invalid Ed25519 public key size")
		}
		return v.pub, nil
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
