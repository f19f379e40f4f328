package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // argon2 encoded
	Roles        []string
	Locked       bool // locked accounts fail authentication regardless of password
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Info returns the public projection of the user for token responses.
func (u *User) Info() *UserInfo {
	return &UserInfo{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Roles: u.Roles,
	}
}
