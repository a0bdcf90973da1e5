package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/auth"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// HandleAPIError writes the error response matching err. Errors that map to
// no known kind are logged and reported as 500 without leaking their text.
func HandleAPIError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, dto.ErrorCodeInternalServer

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		status, code = http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusBadRequest, dto.ErrorCodeConflict
	case errors.Is(err, apperrors.ErrInvalidState), errors.Is(err, apperrors.ErrNoAvailableDepartment):
		status, code = http.StatusBadRequest, dto.ErrorCodeInvalidState
	case errors.Is(err, apperrors.ErrBadRequest):
		status, code = http.StatusBadRequest, dto.ErrorCodeBadRequest
	case errors.Is(err, apperrors.ErrPermissionDenied), errors.Is(err, apperrors.ErrAccountDisabled):
		status, code = http.StatusForbidden, dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status, code = http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, auth.ErrExpiredToken):
		status, code = http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidFormat):
		status, code = http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrRateLimited):
		status, code = http.StatusTooManyRequests, dto.ErrorCodeRateLimited
	}

	message := apperrors.Message(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("requestID", c.GetString(RequestIDKey)).
			Msg("Unhandled error")
		message = "Internal server error"
	}

	detail := dto.NewErrorDetail(code, message)
	if status == http.StatusInternalServerError {
		detail.WithSeverity(dto.ErrorSeverityCritical)
	}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		if field, ok := ce.Details["field"].(string); ok {
			detail = detail.WithField(field)
		}
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// abortUnauthorized rejects a request without valid credentials
func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	detail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}
