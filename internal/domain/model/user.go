package model

import (
	"net/mail"
	"strings"
	"time"

	"chat-assistant/internal/domain"

	"github.com/google/uuid"
)

// User is an account of the auth collaborator. PasswordHash never leaves the server.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	RefreshTokenID string     `json:"-"`
}

func NewUser(id, email, username, passwordHash string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

func (u *User) MarkLogin(at time.Time) { u.LastLoginAt = &at }
