package api

import (
	"errors"
	"f2fit/gym-manager/internal/repository"
	"f2fit/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var badRequestErrors = []error{
	service.ErrInvalidInput,
	service.ErrPasswordTooShort,
	service.ErrPasswordMismatch,
	service.ErrWrongPassword,
	service.ErrEmptyMessage,
	service.ErrUnknownExportEntity,
}

var unauthorizedErrors = []error{
	service.ErrAuthenticationFailed,
	service.ErrSessionExpired,
}

var notFoundErrors = []error{
	repository.ErrNotFound,
	service.ErrGymNotFound,
	service.ErrTariffNotFound,
	service.ErrPlanNotFound,
	service.ErrMemberNotFound,
	service.ErrSubscriptionNotFound,
	service.ErrCoachNotFound,
	service.ErrClassNotFound,
	service.ErrEquipmentNotFound,
	service.ErrContactNotFound,
	service.ErrAccountNotFound,
}

var conflictErrors = []error{
	service.ErrClassFull,
	service.ErrActiveSubscriptionExists,
	service.ErrGymConflict,
	service.ErrDefaultPlanReadOnly,
	service.ErrEmailTaken,
	service.ErrPlanInactive,
	service.ErrExportStorageOff,
	repository.ErrConflict,
	repository.ErrDuplicateID,
}

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps service and repository errors to HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case matches(err, badRequestErrors), errors.As(err, &verrs):
		return http.StatusBadRequest
	case matches(err, unauthorizedErrors):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPlatformPasswordImmutable):
		return http.StatusForbidden
	case matches(err, notFoundErrors):
		return http.StatusNotFound
	case matches(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Unexpected errors are logged and hidden.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		abortWithError(c, code, "An unexpected error occurred")
		return
	}
	abortWithError(c, code, err.Error())
}

// bindJSON binds the body and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}
