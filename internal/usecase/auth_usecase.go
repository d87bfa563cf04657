package usecase

import (
	"context"
	"fmt"

	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/auth"
	"go-headhunter-backend/pkg/credential"
	"go-headhunter-backend/pkg/logger"
	"go-headhunter-backend/pkg/validation"
)

// LoginGuard throttles repeated failed logins per email; *security.LoginTracker implements it.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email string) (bool, int, error)
	ClearAttempts(ctx context.Context, email string) error
}

type authUsecase struct {
	userRepo domain.UserRepository
	hasher   credential.Hasher
	tokens   *auth.TokenManager
	audit    *audit.Logger
	guard    LoginGuard
}

// NewAuthUsecase builds the login flow; guard may be nil to disable lockout.
func NewAuthUsecase(userRepo domain.UserRepository, hasher credential.Hasher, tokens *auth.TokenManager, guard LoginGuard, auditLogger *audit.Logger) domain.AuthUsecase {
	if hasher == nil {
		hasher = credential.NewHasher()
	}
	if auditLogger == nil {
		auditLogger = audit.Nop()
	}
	return &authUsecase{userRepo: userRepo, hasher: hasher, tokens: tokens, audit: auditLogger, guard: guard}
}

// Login checks the password before the activation state so an inactive
// account is only revealed to someone who knows its password.
func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	email = validation.NormalizeEmail(email)

	if u.guard != nil {
		blocked, err := u.guard.IsBlocked(ctx, email)
		if err != nil {
			logger.Log.Warn("login guard unavailable", "error", err)
		} else if blocked {
			u.loginFailed(ctx, email, "blocked")
			return nil, domain.ErrLoginBlocked
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !u.hasher.Verify(password, user.Salt, user.PasswordHash) {
		u.loginFailed(ctx, email, "invalid_credentials")
		if u.guard != nil {
			if _, _, err := u.guard.RecordFailedAttempt(ctx, email); err != nil {
				logger.Log.Warn("record failed login", "error", err)
			}
		}
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		u.loginFailed(ctx, email, "inactive")
		return nil, domain.ErrAccountInactive
	}

	token, expiresAt, err := u.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if u.guard != nil {
		if err := u.guard.ClearAttempts(ctx, email); err != nil {
			logger.Log.Warn("clear failed logins", "error", err)
		}
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: user.Email,
		Details:      map[string]interface{}{"role": user.Role},
	})
	return &domain.LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Sanitize()}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.SanitizedUser, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrAccountNotFound
	}
	return user.Sanitize(), nil
}

func (u *authUsecase) loginFailed(ctx context.Context, email, reason string) {
	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: email,
		Details:      map[string]interface{}{"reason": reason},
	})
}
