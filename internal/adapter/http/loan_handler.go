package http

import (
	"net/http"
	"strconv"

	"salary-stream-loan/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	Principal             string `json:"principal"                validate:"required,uintstr"`
	AnnualInterestRatePct uint32 `json:"annual_interest_rate_pct" validate:"lte=1000"`
	TermMonths            uint32 `json:"term_months"              validate:"required,lte=600"`
	Employer              string `json:"employer"                 validate:"required,hex32"`
	Borrower              string `json:"borrower"                 validate:"required,hex32,nefield=Employer"`
	SettlementToken       string `json:"settlement_token"         validate:"required,token"`
}

type payoffReq struct {
	Amount string `json:"amount" validate:"required,uintstr"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateLoan(c.Request().Context(), loan.CreateLoanInput{
		Principal:             toAmount(req.Principal),
		AnnualInterestRatePct: req.AnnualInterestRatePct,
		TermMonths:            req.TermMonths,
		Employer:              req.Employer,
		Borrower:              req.Borrower,
		SettlementToken:       req.SettlementToken,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// ListLoans pages through the registry in creation order: ?after=<loan_id>&limit=<n>.
func (h *LoanHandler) ListLoans(c echo.Context) error {
	var after uint64
	if s := c.QueryParam("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return badRequest(c, "after must be a loan id")
		}
		after = v
	}
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}
		limit = v
	}
	list, err := h.uc.ListLoans(c.Request().Context(), after, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": list})
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return badRequest(c, "loan_id must be a positive integer")
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) AmountRemaining(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return badRequest(c, "loan_id must be a positive integer")
	}
	dto, err := h.uc.AmountRemaining(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Fund makes the caller the lender.
func (h *LoanHandler) Fund(c echo.Context) error {
	return h.act(c, func(id uint64, caller string) (*loan.LoanDTO, error) {
		return h.uc.Fund(c.Request().Context(), id, caller)
	})
}

func (h *LoanHandler) Payoff(c echo.Context) error {
	var req payoffReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	return h.act(c, func(id uint64, caller string) (*loan.LoanDTO, error) {
		return h.uc.CloseEarlyByBorrowerPayoff(c.Request().Context(), id, caller, toAmount(req.Amount))
	})
}

func (h *LoanHandler) CloseByLender(c echo.Context) error {
	return h.act(c, func(id uint64, caller string) (*loan.LoanDTO, error) {
		return h.uc.CloseEarlyByLender(c.Request().Context(), id, caller)
	})
}

func (h *LoanHandler) Complete(c echo.Context) error {
	return h.act(c, func(id uint64, caller string) (*loan.LoanDTO, error) {
		return h.uc.CloseCompleted(c.Request().Context(), id, caller)
	})
}

func (h *LoanHandler) act(c echo.Context, fn func(id uint64, caller string) (*loan.LoanDTO, error)) error {
	id, ok := loanIDParam(c)
	if !ok {
		return badRequest(c, "loan_id must be a positive integer")
	}
	caller, ok := callerID(c)
	if !ok {
		return missingParty(c)
	}
	dto, err := fn(id, caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
