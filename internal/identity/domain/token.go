package domain

import "time"

// TokenPair is what the token endpoints return: the short-lived access token
// (JWT) and the opaque refresh token, with the access token's expiry.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresAt    time.Time `json:"expires_at"`
	User         *UserInfo `json:"user,omitempty"`
}

// UserInfo is the public identity projection embedded in token responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// RefreshToken models the stored refresh token record. The raw token value
// never touches the database; only its fingerprint does.
type RefreshToken struct {
	ID        string
	SubjectID string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	JTI       string // jti of the access token issued alongside this record
	ExpiresAt time.Time
	Used      bool // set once the token has been rotated
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the token can still be presented for rotation at
// the given instant. Used and Revoked are terminal.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Used && !t.Revoked && now.Before(t.ExpiresAt)
}
