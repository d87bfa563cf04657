package apperror

import "net/http"

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e carrying err as its cause. Sentinel AppErrors stay
// comparable with errors.Is because the copy unwraps to err, and Is matches on
// code and message.
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// Is reports whether target is an AppError with the same code and message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

func BadGateway(message string, err error) *AppError {
	return New(http.StatusBadGateway, message, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}
