package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/internal/usecase"
	"go-headhunter-backend/pkg/apperror"
	"go-headhunter-backend/pkg/credential"
	"go-headhunter-backend/pkg/studentimport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	users    *memUserRepo
	hrs      *MockHrProfileRepo
	students *MockStudentRepo
	mailer   *MockMailer
	tx       *fakeTx
	uc       domain.RegistrationUsecase
}

func newRegistrationFixture(opts usecase.RegistrationOptions, seed ...domain.User) *registrationFixture {
	f := &registrationFixture{
		users:    newMemUserRepo(seed...),
		hrs:      new(MockHrProfileRepo),
		students: new(MockStudentRepo),
		mailer:   new(MockMailer),
	}
	f.tx = &fakeTx{users: f.users}
	f.uc = usecase.NewRegistrationUsecase(usecase.RegistrationDeps{
		Users:      f.users,
		HrProfiles: f.hrs,
		Students:   f.students,
		Tx:         f.tx,
		Mailer:     f.mailer,
	}, opts)
	return f
}

func hrRequest(email string) *domain.HrRegisterRequest {
	return &domain.HrRegisterRequest{
		Email:               email,
		FirstName:           "A",
		LastName:            "B",
		Company:             "C",
		MaxReservedStudents: 3,
	}
}

func toEmail(email string) interface{} {
	return mock.MatchedBy(func(m domain.ActivationMessage) bool { return m.ToEmail == email })
}

func TestRegisterHr(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates inactive account and profile and sends one email", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.hrs.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.HrProfile) bool {
			return p.Company == "C" && p.Email == "r@x.com" && p.MaxReservedStudents == 3
		})).Return(nil).Once()
		f.mailer.On("SendActivationLink", mock.Anything, toEmail("r@x.com")).Return(nil).Once()

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		require.NoError(t, err)
		assert.Equal(t, domain.DispatchSent, res.ActivationEmail)

		user, err := f.users.GetByEmail(ctx, "r@x.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, res.UserID, user.ID)
		assert.Equal(t, domain.RoleHR, user.Role)
		assert.False(t, user.IsActive)
		require.NotNil(t, user.RegisterToken)
		assert.Nil(t, user.TokenExpiresAt)
		assert.Equal(t, 1, f.tx.commits)

		f.hrs.AssertExpectations(t)
		f.mailer.AssertNumberOfCalls(t, "SendActivationLink", 1)
	})

	t.Run("Mailed password matches stored hash", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)

		var sent domain.ActivationMessage
		f.mailer.On("SendActivationLink", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			sent = args.Get(1).(domain.ActivationMessage)
		})

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		require.NoError(t, err)

		user, _ := f.users.GetByID(ctx, res.UserID)
		require.NotNil(t, user)
		assert.Equal(t, res.UserID, sent.UserID)
		assert.Equal(t, *user.RegisterToken, sent.Token)
		assert.NotEqual(t, sent.Password, user.PasswordHash)
		assert.True(t, credential.NewHasher().Verify(sent.Password, user.Salt, user.PasswordHash))
	})

	t.Run("Normalizes email", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, toEmail("r@x.com")).Return(nil)

		_, err := f.uc.RegisterHr(ctx, hrRequest("  R@X.com "))
		require.NoError(t, err)

		user, _ := f.users.GetByEmail(ctx, "r@x.com")
		assert.NotNil(t, user)
	})

	t.Run("Duplicate email fails without mutation", func(t *testing.T) {
		existing := domain.User{ID: "u-1", Email: "r@x.com", Role: domain.RoleHR}
		f := newRegistrationFixture(usecase.RegistrationOptions{}, existing)

		_, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

		assert.Equal(t, map[string]domain.User{"u-1": existing}, f.users.snapshot())
		assert.Equal(t, 0, f.tx.commits)
		f.hrs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.mailer.AssertNotCalled(t, "SendActivationLink", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent insert of the same email maps to duplicate", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.users.createErr = domain.ErrDuplicateEmail.Wrap(errors.New("unique violation"))

		_, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
		f.mailer.AssertNotCalled(t, "SendActivationLink", mock.Anything, mock.Anything)
	})

	t.Run("Invalid request is rejected before any store call", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		req := hrRequest("not-an-email")
		req.MaxReservedStudents = 0

		_, err := f.uc.RegisterHr(ctx, req)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, 0, f.tx.commits+f.tx.rollbacks)
	})

	t.Run("Profile failure rolls back the account", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		assert.ErrorContains(t, err, "disk full")

		user, _ := f.users.GetByEmail(ctx, "r@x.com")
		assert.Nil(t, user)
		assert.Equal(t, 1, f.tx.rollbacks)
		f.mailer.AssertNotCalled(t, "SendActivationLink", mock.Anything, mock.Anything)
	})

	t.Run("Log policy keeps registration when mail fails", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{FailOnDispatch: false})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		require.NoError(t, err)
		assert.Equal(t, domain.DispatchFailed, res.ActivationEmail)

		user, _ := f.users.GetByEmail(ctx, "r@x.com")
		assert.NotNil(t, user)
	})

	t.Run("Fail policy rolls back when mail fails", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{FailOnDispatch: true})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrActivationDispatch)
		assert.ErrorContains(t, errors.Unwrap(err), "smtp down")

		user, _ := f.users.GetByEmail(ctx, "r@x.com")
		assert.Nil(t, user)
		assert.Equal(t, 1, f.tx.rollbacks)
	})

	t.Run("Fail policy reports sent on success", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{FailOnDispatch: true})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, mock.Anything).Return(nil).Once()

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		require.NoError(t, err)
		assert.Equal(t, domain.DispatchSent, res.ActivationEmail)
		f.mailer.AssertNumberOfCalls(t, "SendActivationLink", 1)
	})

	t.Run("Fail policy commit error after send leaves no account", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{FailOnDispatch: true})
		f.tx.commitErr = errors.New("connection lost")
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, mock.Anything).Return(nil).Once()

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		assert.Nil(t, res)
		assert.ErrorContains(t, err, "connection lost")
		assert.NotErrorIs(t, err, domain.ErrActivationDispatch)

		user, _ := f.users.GetByEmail(ctx, "r@x.com")
		assert.Nil(t, user)
		assert.Equal(t, 1, f.tx.rollbacks)
		f.mailer.AssertNumberOfCalls(t, "SendActivationLink", 1)
	})

	t.Run("Missing mailer is skipped or fatal depending on policy", func(t *testing.T) {
		users := newMemUserRepo()
		hrs := new(MockHrProfileRepo)
		hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		deps := usecase.RegistrationDeps{Users: users, HrProfiles: hrs, Tx: &fakeTx{users: users}}

		res, err := usecase.NewRegistrationUsecase(deps, usecase.RegistrationOptions{}).RegisterHr(ctx, hrRequest("r@x.com"))
		require.NoError(t, err)
		assert.Equal(t, domain.DispatchSkipped, res.ActivationEmail)

		_, err = usecase.NewRegistrationUsecase(deps, usecase.RegistrationOptions{FailOnDispatch: true}).RegisterHr(ctx, hrRequest("other@x.com"))
		assert.ErrorIs(t, err, domain.ErrActivationDispatch)
		user, _ := users.GetByEmail(ctx, "other@x.com")
		assert.Nil(t, user)
	})

	t.Run("Token TTL sets expiry", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{TokenTTL: 72 * time.Hour})
		f.hrs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, mock.Anything).Return(nil)

		res, err := f.uc.RegisterHr(ctx, hrRequest("r@x.com"))
		require.NoError(t, err)

		user, _ := f.users.GetByID(ctx, res.UserID)
		require.NotNil(t, user.TokenExpiresAt)
		assert.WithinDuration(t, time.Now().Add(72*time.Hour), *user.TokenExpiresAt, time.Minute)
	})
}

func TestRegisterStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("All new emails are registered", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{
			{Email: "a@x.com", CourseCompletion: 4},
			{Email: "b@x.com", ProjectDegree: 5},
			{Email: "c@x.com", BonusProjectUrls: []string{"https://github.com/c"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 3, summary.SuccessfullyRegistered)
		assert.Equal(t, 0, summary.AlreadyRegistered)
		assert.Equal(t, 0, summary.Rejected)
		assert.Equal(t, 3, f.users.creates)
		f.students.AssertNumberOfCalls(t, "Create", 3)

		user, _ := f.users.GetByEmail(ctx, "c@x.com")
		require.NotNil(t, user)
		assert.Equal(t, domain.RoleStudent, user.Role)
		assert.False(t, user.IsActive)
		assert.NotNil(t, user.RegisterToken)
	})

	t.Run("Profile carries imported grades and urls", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.students.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.StudentProfile) bool {
			return p.Email == "a@x.com" &&
				p.Grades == domain.StudentGrades{CourseCompletion: 4, CourseEngagement: 3, ProjectDegree: 5, TeamProjectDegree: 2} &&
				len(p.BonusProjectUrls) == 1 && p.BonusProjectUrls[0] == "https://github.com/a" &&
				p.ExpectedTypeWork == domain.TypeWorkAny
		})).Return(nil).Once()

		_, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{{
			Email:             "a@x.com",
			CourseCompletion:  4,
			CourseEngagement:  3,
			ProjectDegree:     5,
			TeamProjectDegree: 2,
			BonusProjectUrls:  []string{"https://github.com/a"},
		}})
		require.NoError(t, err)
		f.students.AssertExpectations(t)
	})

	t.Run("Duplicate inside the batch is detected against the evolving store", func(t *testing.T) {
		for _, records := range [][]domain.ImportedStudentData{
			{{Email: "dup@x.com"}, {Email: "other@x.com"}, {Email: "dup@x.com"}},
			{{Email: "other@x.com"}, {Email: "dup@x.com"}, {Email: "DUP@x.com"}},
		} {
			f := newRegistrationFixture(usecase.RegistrationOptions{})
			f.students.On("Create", mock.Anything, mock.Anything).Return(nil)

			summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource(records))
			require.NoError(t, err)
			assert.Equal(t, 2, summary.SuccessfullyRegistered)
			assert.Equal(t, 1, summary.AlreadyRegistered)
		}
	})

	t.Run("Existing account is skipped", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{}, domain.User{ID: "u-1", Email: "a@x.com"})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{{Email: "a@x.com"}, {Email: "b@x.com"}})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SuccessfullyRegistered)
		assert.Equal(t, 1, summary.AlreadyRegistered)
	})

	t.Run("Invalid records are rejected and tallied", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil)

		summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{
			{Email: "ok@x.com"},
			{Email: "broken"},
			{Email: "grade@x.com", ProjectDegree: 7},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SuccessfullyRegistered)
		assert.Equal(t, 2, summary.Rejected)
		assert.Equal(t, summary.Total, summary.SuccessfullyRegistered+summary.AlreadyRegistered+summary.Rejected)
		require.Len(t, summary.Errors, 2)
		assert.Equal(t, 2, summary.Errors[0].Row)
		assert.Equal(t, "broken", summary.Errors[0].Email)
		assert.Equal(t, 3, summary.Errors[1].Row)
	})

	t.Run("Rejected rows report the file line", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil)

		csv := "email,projectDegree\nok@x.com,4\n,\nbroken,3\n"
		summary, err := f.uc.RegisterStudents(ctx, studentimport.NewCSVSource([]byte(csv)))
		require.NoError(t, err)
		require.Len(t, summary.Errors, 1)
		assert.Equal(t, 4, summary.Errors[0].Row)
		assert.Equal(t, "broken", summary.Errors[0].Email)
	})

	t.Run("Race at insert counts as already registered", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.users.createErr = domain.ErrDuplicateEmail.Wrap(errors.New("unique violation"))

		summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{{Email: "a@x.com"}})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.AlreadyRegistered)
		assert.Equal(t, 0, summary.SuccessfullyRegistered)
	})

	t.Run("Store failure aborts the import", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.students.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{{Email: "a@x.com"}, {Email: "b@x.com"}})
		assert.Nil(t, summary)
		assert.ErrorContains(t, err, "row 2")
		assert.ErrorContains(t, err, "connection reset")

		first, _ := f.users.GetByEmail(ctx, "a@x.com")
		second, _ := f.users.GetByEmail(ctx, "b@x.com")
		assert.NotNil(t, first)
		assert.Nil(t, second)
	})

	t.Run("Student emails are suppressed by default", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{{Email: "a@x.com"}})
		require.NoError(t, err)
		f.mailer.AssertNotCalled(t, "SendActivationLink", mock.Anything, mock.Anything)
	})

	t.Run("Student emails can be enabled", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{SendStudentEmails: true})
		f.students.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendActivationLink", mock.Anything, toEmail("a@x.com")).Return(errors.New("smtp down")).Once()

		summary, err := f.uc.RegisterStudents(ctx, studentimport.StaticSource{{Email: "a@x.com"}})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SuccessfullyRegistered)
		f.mailer.AssertExpectations(t)
	})

	t.Run("Source error is returned", func(t *testing.T) {
		f := newRegistrationFixture(usecase.RegistrationOptions{})
		_, err := f.uc.RegisterStudents(ctx, studentimport.NewCSVSource(nil))
		assert.ErrorContains(t, err, "read student import")
	})
}
