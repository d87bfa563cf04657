package domain

import (
	"context"
	"time"
)

// Role constants
const (
	RoleHR      = "hr"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Salt           string     `json:"-"`
	Role           string     `json:"role"`
	IsActive       bool       `json:"is_active"`
	RegisterToken  *string    `json:"-"` // Present only while activation is pending
	TokenExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SanitizedUser is the public view of a User, without credentials or tokens.
type SanitizedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Sanitize() *SanitizedUser {
	return &SanitizedUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserRepository returns (nil, nil) from the Get methods when no row matches.
// Create returns ErrDuplicateEmail when the email is already taken.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Activate flips a pending account holding token to active and clears the
	// token. It returns ErrInvalidActivation when the account is no longer
	// pending with that token, so only one caller can consume it.
	Activate(ctx context.Context, id, token string, at time.Time) error
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *SanitizedUser `json:"user"`
}

type AuthUsecase interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetCurrentUser(ctx context.Context, id string) (*SanitizedUser, error)
}
