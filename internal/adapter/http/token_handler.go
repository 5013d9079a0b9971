package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"salary-stream-loan/internal/usecase/token"
	"salary-stream-loan/pkg/amount"
	"salary-stream-loan/pkg/id"
)

type TokenHandler struct{ uc *token.Usecase }

func NewTokenHandler(uc *token.Usecase) *TokenHandler { return &TokenHandler{uc: uc} }

type approveReq struct {
	Spender string `json:"spender" validate:"required,hex32"`
	Amount  string `json:"amount"  validate:"required,uintstr"`
}

type transferReq struct {
	To     string `json:"to"     validate:"required,hex32"`
	Amount string `json:"amount" validate:"required,uintstr"`
}

type amountReq struct {
	Amount string `json:"amount" validate:"required,uintstr"`
}

// Approve sets the allowance the caller grants spender. Lenders approve the
// loan's address before funding, borrowers before an early payoff.
func (h *TokenHandler) Approve(c echo.Context) error {
	tok, owner, ok := scope(c)
	if !ok {
		return scopeInvalid(c)
	}
	var req approveReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), tok, owner, req.Spender, toAmount(req.Amount))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TokenHandler) Transfer(c echo.Context) error {
	tok, from, ok := scope(c)
	if !ok {
		return scopeInvalid(c)
	}
	var req transferReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Transfer(c.Request().Context(), tok, from, req.To, toAmount(req.Amount))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TokenHandler) Upgrade(c echo.Context) error {
	return h.wrap(c, h.uc.Upgrade)
}

func (h *TokenHandler) Downgrade(c echo.Context) error {
	return h.wrap(c, h.uc.Downgrade)
}

func (h *TokenHandler) Balance(c echo.Context) error {
	tok := c.Param("token")
	account := c.Param("account")
	if !reToken.MatchString(tok) || !id.Valid(account) {
		return badRequest(c, "invalid token or account")
	}
	dto, err := h.uc.BalanceOf(c.Request().Context(), tok, account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TokenHandler) wrap(c echo.Context, fn func(ctx context.Context, tok, account string, a amount.Amount) (*token.BalanceDTO, error)) error {
	tok, account, ok := scope(c)
	if !ok {
		return scopeInvalid(c)
	}
	var req amountReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := fn(c.Request().Context(), tok, account, toAmount(req.Amount))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// scope resolves the token path param and the calling account.
func scope(c echo.Context) (tok, caller string, ok bool) {
	tok = c.Param("token")
	caller, ok = callerID(c)
	return tok, caller, ok && reToken.MatchString(tok)
}

func scopeInvalid(c echo.Context) error {
	if !reToken.MatchString(c.Param("token")) {
		return badRequest(c, "invalid token")
	}
	return missingParty(c)
}
