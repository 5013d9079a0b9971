package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/internal/domain/token"
)

// statusOf maps domain sentinels to HTTP codes; anything unknown is a 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, loan.ErrInvalidTerms),
		errors.Is(err, loan.ErrInvalidParty),
		errors.Is(err, loan.ErrUnsupportedStream),
		errors.Is(err, stream.ErrInvalidRate),
		errors.Is(err, stream.ErrInvalidParties),
		errors.Is(err, token.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, stream.ErrFlowNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrAlreadyFunded),
		errors.Is(err, loan.ErrWrongState),
		errors.Is(err, loan.ErrTermNotElapsed),
		errors.Is(err, stream.ErrFlowExists):
		return http.StatusConflict
	case errors.Is(err, loan.ErrAllowanceInsufficient),
		errors.Is(err, token.ErrAllowanceInsufficient),
		errors.Is(err, token.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, loan.ErrUnauthorized),
		errors.Is(err, stream.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		c.Logger().Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}

// bindValid binds and validates req, writing the 400/422 response itself. A
// false return means the response is already written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, invalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}
