package http

import (
	"errors"
	"net/http"
	"time"

	"orders/internal/core/domain/model/device"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/requestctx"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every failure as ErrorResponse. Unclassified errors
// only expose an error id that is also logged.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(c, err, logger)

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("error response not written", zap.Error(err))
		}
	}
}

func renderError(c echo.Context, err error, logger *zap.Logger) (int, ErrorResponse) {
	ctx := c.Request().Context()
	log := logger.With(zap.String("correlationId", requestctx.CorrelationID(ctx)))

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, newErrorResponse(he.Code, http.StatusText(he.Code), msg)
	}

	if !errs.IsClassified(err) {
		errorID := requestctx.CorrelationID(ctx)
		if errorID == "" {
			errorID = uuid.NewString()
		}
		log.Error("unhandled error", zap.String("errorId", errorID), zap.Error(err))
		return http.StatusInternalServerError, newErrorResponse(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred. Error ID: "+errorID,
		)
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	return status, newErrorResponse(status, errorTitle(err), errs.MessageOf(err))
}

func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindBadRequest:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	default:
		if errs.IsRetryable(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

func errorTitle(err error) string {
	var unavailable *device.UnavailableError
	if errors.As(err, &unavailable) {
		return "Device Error"
	}
	switch errs.KindOf(err) {
	case errs.KindBadRequest:
		return "Validation Error"
	default:
		return "Order Error"
	}
}

func newErrorResponse(status int, title, message string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     title,
		Message:   message,
	}
}
