package jwtx

import (
	"errors"
)

// Verifier validates an access token string and gives you back the claims if
// it's legit. VerifyIgnoringExpiry exists for exactly one caller: the refresh
// path, where an access token that has legitimately expired is still an
// acceptable proof of prior authentication. Signature, issuer, and audience
// are enforced on both entry points.
type Verifier interface {
	Verify(token string) (Claims, error)
	VerifyIgnoringExpiry(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// validateClaims runs the registered-claim checks shared by all verifiers.
// Issuer and audience are always enforced; expiry only when checkExpiry is set.
func validateClaims(c *Claims, issuer string, aud []string, checkExpiry bool) error {
	if err := c.ValidateIssuer(issuer); err != nil {
		return err
	}
	if err := c.ValidateAudience(aud); err != nil {
		return err
	}
	if checkExpiry {
		if err := c.ValidateExpiry(); err != nil {
			return err
		}
	}
	return nil
}
