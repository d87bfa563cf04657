package middleware

import (
	"errors"
	"net/http"

	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/pkg/apperror"
	"go-headhunter-backend/pkg/logger"
	"go-headhunter-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed", "path", c.FullPath(), "status", appErr.Code, "error", err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
		case errors.As(err, &validationErrs):
			response.Error(c, http.StatusBadRequest, "Validation failed", validation.FormatValidationErrors(err))
		default:
			// Internal details stay in the server log
			logger.Log.Error("internal server error", "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
