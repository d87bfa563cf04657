package domain

import (
	"context"
	"time"
)

type HrProfile struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email"` // Mirrors users.email
	Company             string    `json:"company"`
	MaxReservedStudents int       `json:"max_reserved_students"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type HrProfileRepository interface {
	Create(ctx context.Context, profile *HrProfile) error
	GetByUserID(ctx context.Context, userID string) (*HrProfile, error)
	// GetByUserIDForUpdate locks the profile row; must be called inside a transaction.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*HrProfile, error)
}

type HrRegisterRequest struct {
	Email               string `json:"email" binding:"required" validate:"required,email,max=255"`
	FirstName           string `json:"first_name" binding:"required" validate:"required,max=255,valid_name"`
	LastName            string `json:"last_name" binding:"required" validate:"required,max=255,valid_name"`
	Company             string `json:"company" binding:"required" validate:"required,max=255"`
	MaxReservedStudents int    `json:"max_reserved_students" binding:"required" validate:"min=1,max=999"`
}

// Activation email dispatch outcome reported back to the caller
const (
	DispatchSent    = "sent"
	DispatchFailed  = "failed"
	DispatchSkipped = "skipped"
)

type HrRegistrationResult struct {
	UserID          string `json:"user_id"`
	ActivationEmail string `json:"activation_email"`
}
