package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/menu"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/observability"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
	apperrors "github.com/fetullahyldz/qr.menux.com-sub001/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and
// logging. The request logger wraps the error handler so it sees the final
// status of failed requests.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(translateError(err))
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				body := fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}
				if len(domainErr.Details) > 0 {
					body["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestIDFromContext(c)),
						zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"success": false, "error": body})
				err = nil
			}
		}()
		return c.Next()
	}
}

// translateError maps client package errors onto DomainError.
func translateError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return apperrors.NewValidationError("request validation failed", verr.Details())
	}

	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	case errors.Is(err, menu.ErrTableNotFound):
		return apperrors.NewNotFound("table", nil)
	case errors.Is(err, menu.ErrEmptyCart):
		return apperrors.NewDomainError("CART_EMPTY", err.Error(), http.StatusConflict, nil)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewDomainError("BACKEND_TIMEOUT", "backend did not answer in time", http.StatusGatewayTimeout, nil)
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiclient.IsRejected(err) {
			status := apiErr.StatusCode
			if status < http.StatusBadRequest {
				status = http.StatusUnprocessableEntity
			}
			message := apiErr.Message
			if message == "" {
				message = http.StatusText(status)
			}
			return apperrors.NewDomainError("BACKEND_REJECTED", message, status, nil)
		}
		return apperrors.NewBadGateway("backend request failed", err)
	}
	if errors.Is(err, apiclient.ErrUnavailable) {
		return apperrors.NewBadGateway("backend unavailable", err)
	}
	return err
}
