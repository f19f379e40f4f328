package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256KeyBytes is the minimum accepted symmetric key length. HS256 keys
// shorter than the hash output weaken the MAC, so we refuse them outright.
const MinHS256KeyBytes = 32

// HS256Signer implements the Signer interface using an HMAC-SHA256 shared key.
type HS256Signer struct {
	key []byte
	alg string
}

func newHS256Signer(key []byte) (*HS256Signer, error) {
	s := &HS256Signer{
		key: key,
		alg: jwt.SigningMethodHS256.Alg(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Validate does a sanity check on the configured key material.
func (s *HS256Signer) Validate() error {
	if len(s.key) == 0 {
		return errors.New("jwtx: no HS256 key configured")
	}
	if len(s.key) < MinHS256KeyBytes {
		return errors.New("jwtx: HS256 key shorter than 32 bytes")
	}
	return nil
}
