package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"salary-stream-loan/internal/adapter/middleware"
	"salary-stream-loan/pkg/amount"
	"salary-stream-loan/pkg/id"
)

// ---- helpers ----

// callerID prefers the id the idempotency middleware already validated and
// falls back to the raw header for routes it does not guard.
func callerID(c echo.Context) (string, bool) {
	if v, ok := c.Get(middleware.PartyIDKey).(string); ok && v != "" {
		return v, true
	}
	party := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderPartyID))
	return party, id.Valid(party)
}

func loanIDParam(c echo.Context) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	return n, err == nil && n > 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func missingParty(c echo.Context) error {
	return badRequest(c, "missing or invalid "+middleware.HeaderPartyID)
}

// toAmount is only called on fields that passed the uintstr tag.
func toAmount(s string) amount.Amount {
	a, _ := amount.Parse(s)
	return a
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
