package usecase

import (
	"context"
	"fmt"
	"time"

	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/apperror"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const DefaultReservationPeriod = 10 * 24 * time.Hour

type reservationUsecase struct {
	students   domain.StudentRepository
	hrProfiles domain.HrProfileRepository
	users      domain.UserRepository
	tx         domain.Transactor
	validate   *validator.Validate
	audit      *audit.Logger
	period     time.Duration
	now        func() time.Time
}

func NewReservationUsecase(
	students domain.StudentRepository,
	hrProfiles domain.HrProfileRepository,
	users domain.UserRepository,
	tx domain.Transactor,
	validate *validator.Validate,
	auditLogger *audit.Logger,
	period time.Duration,
) domain.ReservationUsecase {
	if validate == nil {
		validate = validation.New()
	}
	if auditLogger == nil {
		auditLogger = audit.Nop()
	}
	if period <= 0 {
		period = DefaultReservationPeriod
	}
	return &reservationUsecase{
		students:   students,
		hrProfiles: hrProfiles,
		users:      users,
		tx:         tx,
		validate:   validate,
		audit:      auditLogger,
		period:     period,
		now:        time.Now,
	}
}

func (u *reservationUsecase) ListAvailableStudents(ctx context.Context, filter domain.StudentFilter) ([]domain.StudentProfile, int64, error) {
	if err := u.validate.Struct(filter); err != nil {
		return nil, 0, apperror.BadRequest(validation.JoinValidationErrors(err)).Wrap(err)
	}
	students, total, err := u.students.ListAvailable(ctx, filter, u.now().UTC())
	if err != nil {
		return nil, 0, fmt.Errorf("list available students: %w", err)
	}
	return students, total, nil
}

func (u *reservationUsecase) ListReservedStudents(ctx context.Context, hrUserID string) ([]domain.StudentProfile, error) {
	hr, err := u.hrProfile(ctx, hrUserID)
	if err != nil {
		return nil, err
	}
	students, err := u.students.ListReservedBy(ctx, hr.ID, u.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list reserved students: %w", err)
	}
	return students, nil
}

// ReserveStudent locks the recruiter's profile and then the student row, so
// parallel reservations by one recruiter see each other's count and two
// recruiters cannot reserve the same student.
func (u *reservationUsecase) ReserveStudent(ctx context.Context, hrUserID, studentID string) (*domain.StudentProfile, error) {
	user, err := u.users.GetByID(ctx, hrUserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	var reserved *domain.StudentProfile
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		hr, err := u.hrProfiles.GetByUserIDForUpdate(ctx, hrUserID)
		if err != nil {
			return fmt.Errorf("lock hr profile: %w", err)
		}
		if hr == nil {
			return domain.ErrHrProfileNotFound
		}
		now := u.now().UTC()

		student, err := u.students.GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return fmt.Errorf("lock student: %w", err)
		}
		if student == nil {
			return domain.ErrStudentNotFound
		}
		if student.IsReserved(now) {
			return domain.ErrStudentAlreadyReserved
		}

		count, err := u.students.CountReservedBy(ctx, hr.ID, now)
		if err != nil {
			return fmt.Errorf("count reservations: %w", err)
		}
		if count >= hr.MaxReservedStudents {
			return domain.ErrReservationLimitReached
		}

		until := now.Add(u.period)
		if err := u.students.SetReservation(ctx, student.ID, &hr.ID, &until); err != nil {
			return err
		}
		student.HrProfileID = &hr.ID
		student.ReservedUntil = &until
		reserved = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventStudentReserved,
		SubjectType:  "user_id",
		SubjectValue: hrUserID,
		Details: map[string]interface{}{
			"student_id":     reserved.ID,
			"reserved_until": reserved.ReservedUntil,
		},
	})
	return reserved, nil
}

func (u *reservationUsecase) ReleaseStudent(ctx context.Context, hrUserID, studentID string) error {
	hr, err := u.hrProfile(ctx, hrUserID)
	if err != nil {
		return err
	}

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		student, err := u.students.GetByIDForUpdate(ctx, studentID)
		if err != nil {
			return fmt.Errorf("lock student: %w", err)
		}
		if student == nil {
			return domain.ErrStudentNotFound
		}
		if !student.IsReserved(u.now().UTC()) || *student.HrProfileID != hr.ID {
			return domain.ErrNotReservedByHr
		}
		return u.students.SetReservation(ctx, student.ID, nil, nil)
	})
	if err != nil {
		return err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventStudentReleased,
		SubjectType:  "user_id",
		SubjectValue: hrUserID,
		Details:      map[string]interface{}{"student_id": studentID},
	})
	return nil
}

func (u *reservationUsecase) hrProfile(ctx context.Context, hrUserID string) (*domain.HrProfile, error) {
	hr, err := u.hrProfiles.GetByUserID(ctx, hrUserID)
	if err != nil {
		return nil, fmt.Errorf("get hr profile: %w", err)
	}
	if hr == nil {
		return nil, domain.ErrHrProfileNotFound
	}
	return hr, nil
}
