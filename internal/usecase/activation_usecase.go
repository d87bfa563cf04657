package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/credential"
	"go-headhunter-backend/pkg/logger"
)

type activationUsecase struct {
	users domain.UserRepository
	audit *audit.Logger
	now   func() time.Time
}

func NewActivationUsecase(users domain.UserRepository, auditLogger *audit.Logger) domain.ActivationUsecase {
	if auditLogger == nil {
		auditLogger = audit.Nop()
	}
	return &activationUsecase{
		users: users,
		audit: auditLogger,
		now:   time.Now,
	}
}

// Activate consumes the activation token of a pending HR account. A rejected
// attempt never modifies the account.
func (u *activationUsecase) Activate(ctx context.Context, userID, token string) (*domain.SanitizedUser, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrAccountNotFound
	}

	if user.IsActive || user.RegisterToken == nil || !credential.ConstantTimeEqual(*user.RegisterToken, token) {
		u.reject(ctx, user, "token_mismatch")
		return nil, domain.ErrInvalidActivation
	}

	now := u.now().UTC()
	if user.TokenExpiresAt != nil && !now.Before(*user.TokenExpiresAt) {
		u.reject(ctx, user, "token_expired")
		return nil, domain.ErrActivationExpired
	}

	switch user.Role {
	case domain.RoleHR:
		if err := u.users.Activate(ctx, user.ID, token, now); err != nil {
			if errors.Is(err, domain.ErrInvalidActivation) {
				// Consumed by a concurrent request after our read
				u.reject(ctx, user, "token_consumed")
				return nil, domain.ErrInvalidActivation
			}
			return nil, fmt.Errorf("activate user: %w", err)
		}
		user.IsActive = true
		user.RegisterToken = nil
		user.TokenExpiresAt = nil
		user.UpdatedAt = now
		u.audit.Log(ctx, audit.Event{
			Event:        audit.EventAccountActivated,
			SubjectType:  "user_id",
			SubjectValue: user.ID,
			Details:      map[string]interface{}{"role": user.Role},
		})
	default:
		// No activation flow is defined for students yet; the account stays pending.
		logger.Log.Warn("activation requested for unsupported role", "user_id", user.ID, "role", user.Role)
	}

	return user.Sanitize(), nil
}

func (u *activationUsecase) reject(ctx context.Context, user *domain.User, reason string) {
	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventActivationFailed,
		SubjectType:  "user_id",
		SubjectValue: user.ID,
		Details:      map[string]interface{}{"reason": reason},
	})
}
