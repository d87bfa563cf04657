package domain

import (
	"errors"

	"go-headhunter-backend/pkg/apperror"
)

// Registration & activation errors
var (
	ErrDuplicateEmail          = apperror.Conflict("The user with the given email already exists.")
	ErrDuplicateGithubUsername = apperror.Conflict("The github username is already registered.")
	ErrAccountNotFound         = apperror.NotFound("User not found")
	ErrInvalidActivation       = apperror.BadRequest("Invalid activation link")
	ErrActivationExpired       = ErrInvalidActivation.Wrap(errors.New("activation token expired"))
	ErrActivationDispatch      = apperror.BadGateway("Failed to send activation email", nil)
)

// Auth errors
var (
	ErrInvalidCredentials = apperror.Unauthorized("Invalid email or password")
	ErrAccountInactive    = apperror.Forbidden("Account is not activated")
	ErrLoginBlocked       = apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
)

// Reservation errors
var (
	ErrStudentNotFound         = apperror.NotFound("Student not found")
	ErrHrProfileNotFound       = apperror.NotFound("HR profile not found")
	ErrStudentAlreadyReserved  = apperror.Conflict("Student is already reserved")
	ErrReservationLimitReached = apperror.Conflict("Maximum number of reserved students reached")
	ErrNotReservedByHr         = apperror.Forbidden("Student is not reserved by you")
)
