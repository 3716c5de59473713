package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/solstrike/chipgate/internal/authority"
	"github.com/solstrike/chipgate/internal/chipledger"
	"github.com/solstrike/chipgate/internal/exchange"
	"github.com/solstrike/chipgate/internal/pkg/apperrors"
	"github.com/solstrike/chipgate/internal/pkg/logger"
	"github.com/solstrike/chipgate/internal/registry"
	"github.com/solstrike/chipgate/internal/rewards"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle if there are errors
		if len(c.Errors) == 0 {
			return
		}

		// Get the last error
		err := c.Errors.Last().Err
		appErr := toAppError(err)

		// Log the error
		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}

		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "Internal Server Error", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		c.JSON(appErr.HTTPStatus, appErr)
	}
}

// toAppError maps accounting-core sentinels onto transport error types.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, authority.ErrUnauthorized),
		errors.Is(err, chipledger.ErrBadCapability):
		return apperrors.New(apperrors.ErrUnauthorized, err.Error(), err)
	case errors.Is(err, exchange.ErrOverflow),
		errors.Is(err, rewards.ErrOverflow),
		errors.Is(err, chipledger.ErrBalanceOverflow):
		return apperrors.New(apperrors.ErrOverflow, err.Error(), err)
	case errors.Is(err, registry.ErrAlreadyInitialized):
		return apperrors.New(apperrors.ErrAlreadyInitialized, err.Error(), err)
	case errors.Is(err, registry.ErrAlreadyRegistered):
		return apperrors.New(apperrors.ErrAlreadyRegistered, err.Error(), err)
	case errors.Is(err, registry.ErrNotFound):
		return apperrors.New(apperrors.ErrNotFound, err.Error(), err)
	case errors.Is(err, exchange.ErrInsufficientCustody),
		errors.Is(err, rewards.ErrInsufficientCustody):
		return apperrors.New(apperrors.ErrInsufficientCustody, err.Error(), err)
	case errors.Is(err, chipledger.ErrInsufficientBalance):
		return apperrors.New(apperrors.ErrInsufficientFunds, err.Error(), err)
	case errors.Is(err, exchange.ErrZeroAmount),
		errors.Is(err, rewards.ErrTooManyRecipients),
		errors.Is(err, rewards.ErrInvalidBonus):
		return apperrors.New(apperrors.ErrInvalidRequest, err.Error(), err)
	default:
		return apperrors.New(apperrors.ErrInternal, err.Error(), err)
	}
}
