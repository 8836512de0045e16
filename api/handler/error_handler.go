package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tourbooking/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler formats every failure returned by handlers and middleware.
// Unexpected errors are logged in full and reach the client as a generic
// message; development mode adds the cause to the body.
func ErrorHandler(logger logrus.FieldLogger, development bool) echo.HTTPErrorHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
				"status": status,
			}).Error("request failed")
		}

		body := errorResponse{Status: statusText(status), Message: message}
		if development {
			body.Error = err.Error()
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WithError(writeErr).Warn("failed to write error response")
		}
	}
}

func classify(err error) (int, string) {
	var (
		appErr         *service.Error
		httpErr        *echo.HTTPError
		validationErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &appErr):
		if !appErr.Operational() {
			return http.StatusInternalServerError, service.MsgGenericFailure
		}
		return statusForKind(appErr.Kind()), appErr.Message()
	case errors.As(err, &httpErr):
		if httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, service.MsgGenericFailure
		}
		return httpErr.Code, httpMessage(httpErr)
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, describeFields(validationErrs)
	}
	return http.StatusInternalServerError, service.MsgGenericFailure
}

func statusForKind(kind error) int {
	switch kind {
	case service.ErrValidation, service.ErrInvalidOrExpiredToken:
		return http.StatusBadRequest
	case service.ErrAuthentication:
		return http.StatusUnauthorized
	case service.ErrAuthorization:
		return http.StatusForbidden
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func statusText(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}

func httpMessage(err *echo.HTTPError) string {
	if err.Code == http.StatusNotFound && err.Message == http.StatusText(http.StatusNotFound) {
		return "Can't find this route on this server!"
	}
	if message, ok := err.Message.(string); ok {
		return message
	}
	return fmt.Sprint(err.Message)
}

func describeFields(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		fields = append(fields, fmt.Sprintf("%s is invalid (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return "Invalid input data. " + strings.Join(fields, ". ")
}
