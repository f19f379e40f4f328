package jwtx

// Signer is our interface for anything that can sign access tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// NewSignerHS256 creates an HS256 signer from raw symmetric key bytes.
// The key must carry at least 32 bytes of material.
func NewSignerHS256(key []byte) (Signer, error) {
	return newHS256Signer(key)
}

// NewSignerEdDSA creates an EdDSA signer from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewSignerEdDSA(pemKey []byte) (Signer, error) {
	return newEdDSASigner(pemKey)
}
