package api

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	errors "github.com/Proton-105/dataeng-assistant/internal/errors"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string   `json:"error"`
	Required []string `json:"required,omitempty"`
	Invalid  []string `json:"invalid,omitempty"`
}

// newErrorHandler maps errors to JSON responses: echo errors keep their status, application
// errors are reported through the central handler and mapped by code.
func newErrorHandler(h *errors.Handler, log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := http.StatusInternalServerError, errorResponse{}

		var he *echo.HTTPError
		switch {
		case stdErrors.As(err, &he):
			code = he.Code
			body.Error = http.StatusText(code)
			if he.Message != nil {
				body.Error = fmt.Sprint(he.Message)
			}
		default:
			msg, _ := h.Handle(c.Request().Context(), err)
			body.Error = msg
			code = statusFor(err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			log.Error("failed to write error response", slog.Any("error", writeErr))
		}
	}
}

func statusFor(err error) int {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case errors.CodeValidation:
		return http.StatusBadRequest
	case errors.CodeSessionBusy:
		return http.StatusConflict
	case errors.CodeExternalAPI, errors.CodeDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
