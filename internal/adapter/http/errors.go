package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mortgage-backend/internal/domain/errs"
)

// statusOf maps an error kind onto its HTTP status.
func statusOf(k errs.Kind) int {
	switch k {
	case errs.NotFound:
		return http.StatusNotFound
	case errs.IllegalTransition, errs.TerminalState, errs.IllegalDeletion,
		errs.ConditionsUnsatisfied, errs.Conflict:
		return http.StatusConflict
	case errs.MissingReason, errs.ValidationFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError renders err. Untagged errors are logged and hidden behind a 500.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	k := errs.KindOf(err)
	code := statusOf(k)
	if code == http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		log.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error(), Kind: k.String()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Kind:    errs.ValidationFailure.String(),
		Details: ToFieldErrors(err),
	})
}

// bindAndValidate decodes the JSON body into req and runs the validator.
// On failure it has already written the response; ok is false.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}
