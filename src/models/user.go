package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPatch follows the same keep-on-empty rule as TransactionPatch.
type UserPatch struct {
	Username     string
	Email        string
	PasswordHash []byte
}

func (u *User) Apply(p UserPatch) {
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if len(p.PasswordHash) > 0 {
		u.PasswordHash = p.PasswordHash
	}
}
