package http

import "github.com/labstack/echo/v4"

// Register mounts every route on e. Middleware is the caller's concern.
func Register(e *echo.Echo, h *Handler, loans *LoanHandler, flows *FlowHandler, tokens *TokenHandler) {
	e.GET("/health", h.Health)

	e.POST("/loans", loans.CreateLoan)
	e.GET("/loans", loans.ListLoans)
	e.GET("/loans/:loan_id", loans.GetLoan)
	e.GET("/loans/:loan_id/amount-remaining", loans.AmountRemaining)
	e.POST("/loans/:loan_id/fund", loans.Fund)
	e.POST("/loans/:loan_id/payoff", loans.Payoff)
	e.POST("/loans/:loan_id/close-by-lender", loans.CloseByLender)
	e.POST("/loans/:loan_id/complete", loans.Complete)

	e.PUT("/flows", flows.PutFlow)
	e.DELETE("/flows", flows.DeleteFlow)
	e.GET("/flows", flows.GetFlow)
	e.GET("/accounts/:account/net-flow", flows.NetFlow)

	e.POST("/tokens/:token/approve", tokens.Approve)
	e.POST("/tokens/:token/transfer", tokens.Transfer)
	e.POST("/tokens/:token/upgrade", tokens.Upgrade)
	e.POST("/tokens/:token/downgrade", tokens.Downgrade)
	e.GET("/tokens/:token/balances/:account", tokens.Balance)
}
