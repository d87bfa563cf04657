package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/apperror"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/credential"
	"go-headhunter-backend/pkg/logger"
	"go-headhunter-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

var errNoMailer = errors.New("no activation mailer configured")

// RegistrationOptions controls activation mail handling.
type RegistrationOptions struct {
	// FailOnDispatch sends the HR activation email inside the registration
	// transaction and rolls back when it cannot be delivered. A commit failure
	// after a successful send cannot recall the email. When false the email is
	// sent after commit and a failure is only logged.
	FailOnDispatch bool
	// SendStudentEmails enables activation emails for imported students.
	SendStudentEmails bool
	// TokenTTL is the lifetime of an activation token; 0 means no expiry.
	TokenTTL time.Duration
}

// RegistrationDeps are the collaborators of the registration workflow.
type RegistrationDeps struct {
	Users      domain.UserRepository
	HrProfiles domain.HrProfileRepository
	Students   domain.StudentRepository
	Tx         domain.Transactor
	Mailer     domain.ActivationMailer
	Generator  credential.Generator
	Hasher     credential.Hasher
	Validate   *validator.Validate
	Audit      *audit.Logger
}

type registrationUsecase struct {
	users      domain.UserRepository
	hrProfiles domain.HrProfileRepository
	students   domain.StudentRepository
	tx         domain.Transactor
	mailer     domain.ActivationMailer
	generator  credential.Generator
	hasher     credential.Hasher
	validate   *validator.Validate
	audit      *audit.Logger
	opts       RegistrationOptions
	now        func() time.Time
}

func NewRegistrationUsecase(deps RegistrationDeps, opts RegistrationOptions) domain.RegistrationUsecase {
	u := &registrationUsecase{
		users:      deps.Users,
		hrProfiles: deps.HrProfiles,
		students:   deps.Students,
		tx:         deps.Tx,
		mailer:     deps.Mailer,
		generator:  deps.Generator,
		hasher:     deps.Hasher,
		validate:   deps.Validate,
		audit:      deps.Audit,
		opts:       opts,
		now:        time.Now,
	}
	if u.generator == nil {
		u.generator = credential.NewGenerator()
	}
	if u.hasher == nil {
		u.hasher = credential.NewHasher()
	}
	if u.validate == nil {
		u.validate = validation.New()
	}
	if u.audit == nil {
		u.audit = audit.Nop()
	}
	return u
}

func (u *registrationUsecase) RegisterHr(ctx context.Context, req *domain.HrRegisterRequest) (*domain.HrRegistrationResult, error) {
	if req == nil {
		return nil, apperror.BadRequest("Request body is required")
	}
	in := *req
	in.Email = validation.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Company = strings.TrimSpace(in.Company)

	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.JoinValidationErrors(err)).Wrap(err)
	}

	existing, err := u.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email availability: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	user, creds, err := u.newAccount(in.Email, domain.RoleHR)
	if err != nil {
		return nil, err
	}
	profile := &domain.HrProfile{
		ID:                  credential.NewID(),
		UserID:              user.ID,
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Email:               in.Email,
		Company:             in.Company,
		MaxReservedStudents: in.MaxReservedStudents,
		CreatedAt:           user.CreatedAt,
		UpdatedAt:           user.CreatedAt,
	}
	msg := activationMessage(user, creds)
	result := &domain.HrRegistrationResult{UserID: user.ID}

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.users.Create(ctx, user); err != nil {
			return err
		}
		if err := u.hrProfiles.Create(ctx, profile); err != nil {
			return err
		}
		if u.opts.FailOnDispatch {
			if err := u.send(ctx, msg); err != nil {
				return domain.ErrActivationDispatch.Wrap(err)
			}
			result.ActivationEmail = domain.DispatchSent
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrActivationDispatch) {
			u.logDispatchFailure(ctx, user, errors.Unwrap(err), true)
			return nil, err
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		if result.ActivationEmail == domain.DispatchSent {
			// Commit failed after the mail went out; the link points at no account
			logger.Log.Error("activation email sent for rolled back registration", "user_id", user.ID, "error", err)
		}
		return nil, fmt.Errorf("register hr: %w", err)
	}

	if !u.opts.FailOnDispatch {
		result.ActivationEmail = u.dispatch(ctx, user, msg)
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventHrRegistered,
		SubjectType:  "email",
		SubjectValue: user.Email,
		Details: map[string]interface{}{
			"user_id":          user.ID,
			"company":          profile.Company,
			"activation_email": result.ActivationEmail,
		},
	})
	logger.Log.Info("hr registered", "user_id", user.ID, "activation_email", result.ActivationEmail)

	return result, nil
}

// RegisterStudents registers every new, valid record of source in input order.
// Duplicates are detected against the store as it evolves, so a repeated
// email inside one batch is tallied as already registered. A store failure
// other than a uniqueness conflict stops the import; records processed before
// it stay registered.
func (u *registrationUsecase) RegisterStudents(ctx context.Context, source domain.StudentImportSource) (*domain.StudentRegistrationSummary, error) {
	if source == nil {
		return nil, apperror.BadRequest("Student import source is required")
	}
	records, err := source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("read student import: %w", err)
	}

	summary := &domain.StudentRegistrationSummary{
		Total:  len(records),
		Errors: []domain.StudentImportError{},
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := rec.Line
		if row == 0 {
			row = i + 1
		}
		rec.Email = validation.NormalizeEmail(rec.Email)

		if err := u.validate.Struct(rec); err != nil {
			summary.Rejected++
			summary.Errors = append(summary.Errors, domain.StudentImportError{
				Row:    row,
				Email:  rec.Email,
				Reason: validation.JoinValidationErrors(err),
			})
			continue
		}

		registered, err := u.registerStudent(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("register student at row %d: %w", row, err)
		}
		if registered {
			summary.SuccessfullyRegistered++
		} else {
			summary.AlreadyRegistered++
		}
	}

	u.audit.Log(ctx, audit.Event{
		Event: audit.EventStudentsImported,
		Details: map[string]interface{}{
			"total":              summary.Total,
			"registered":         summary.SuccessfullyRegistered,
			"already_registered": summary.AlreadyRegistered,
			"rejected":           summary.Rejected,
		},
	})
	logger.Log.Info("students imported",
		"total", summary.Total,
		"registered", summary.SuccessfullyRegistered,
		"already_registered", summary.AlreadyRegistered,
		"rejected", summary.Rejected,
	)

	return summary, nil
}

// registerStudent reports false when the email is already taken.
func (u *registrationUsecase) registerStudent(ctx context.Context, rec domain.ImportedStudentData) (bool, error) {
	existing, err := u.users.GetByEmail(ctx, rec.Email)
	if err != nil {
		return false, fmt.Errorf("check email availability: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	user, creds, err := u.newAccount(rec.Email, domain.RoleStudent)
	if err != nil {
		return false, err
	}
	profile := &domain.StudentProfile{
		ID:     credential.NewID(),
		UserID: user.ID,
		Email:  rec.Email,
		Grades: domain.StudentGrades{
			CourseCompletion:  rec.CourseCompletion,
			CourseEngagement:  rec.CourseEngagement,
			ProjectDegree:     rec.ProjectDegree,
			TeamProjectDegree: rec.TeamProjectDegree,
		},
		PortfolioUrls:        []string{},
		ProjectUrls:          []string{},
		BonusProjectUrls:     append([]string{}, rec.BonusProjectUrls...),
		ExpectedTypeWork:     domain.TypeWorkAny,
		ExpectedContractType: domain.ContractAny,
		CreatedAt:            user.CreatedAt,
		UpdatedAt:            user.CreatedAt,
	}

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.users.Create(ctx, user); err != nil {
			return err
		}
		return u.students.Create(ctx, profile)
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Lost a race with a concurrent registration of the same email
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if u.opts.SendStudentEmails {
		u.dispatch(ctx, user, activationMessage(user, creds))
	}
	return true, nil
}

func (u *registrationUsecase) newAccount(email, role string) (*domain.User, credential.Credentials, error) {
	creds, err := u.generator.Generate()
	if err != nil {
		return nil, credential.Credentials{}, fmt.Errorf("generate credentials: %w", err)
	}

	now := u.now().UTC()
	token := creds.ActivationToken
	user := &domain.User{
		ID:            credential.NewID(),
		Email:         email,
		PasswordHash:  u.hasher.Hash(creds.Password, creds.Salt),
		Salt:          creds.Salt,
		Role:          role,
		IsActive:      false,
		RegisterToken: &token,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if u.opts.TokenTTL > 0 {
		expiresAt := now.Add(u.opts.TokenTTL)
		user.TokenExpiresAt = &expiresAt
	}
	return user, creds, nil
}

func (u *registrationUsecase) send(ctx context.Context, msg domain.ActivationMessage) error {
	if u.mailer == nil {
		return errNoMailer
	}
	return u.mailer.SendActivationLink(ctx, msg)
}

// dispatch sends the activation email and reports the outcome without failing.
func (u *registrationUsecase) dispatch(ctx context.Context, user *domain.User, msg domain.ActivationMessage) string {
	if u.mailer == nil {
		return domain.DispatchSkipped
	}
	if err := u.send(ctx, msg); err != nil {
		u.logDispatchFailure(ctx, user, err, false)
		return domain.DispatchFailed
	}
	return domain.DispatchSent
}

func (u *registrationUsecase) logDispatchFailure(ctx context.Context, user *domain.User, err error, rolledBack bool) {
	logger.Log.Error("activation email failed",
		"user_id", user.ID,
		"role", user.Role,
		"rolled_back", rolledBack,
		"error", err,
	)
	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventActivationEmailFailed,
		SubjectType:  "email",
		SubjectValue: user.Email,
		Details: map[string]interface{}{
			"user_id":     user.ID,
			"rolled_back": rolledBack,
		},
	})
}

func activationMessage(user *domain.User, creds credential.Credentials) domain.ActivationMessage {
	return domain.ActivationMessage{
		ToEmail:  user.Email,
		UserID:   user.ID,
		Token:    creds.ActivationToken,
		Password: creds.Password,
		Role:     user.Role,
	}
}
