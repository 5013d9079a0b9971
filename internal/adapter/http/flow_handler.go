package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/internal/usecase/stream"
	"salary-stream-loan/pkg/id"
)

type FlowHandler struct{ uc *stream.Usecase }

func NewFlowHandler(uc *stream.Usecase) *FlowHandler { return &FlowHandler{uc: uc} }

type putFlowReq struct {
	Token    string `json:"token"    validate:"required,token"`
	Receiver string `json:"receiver" validate:"required,hex32"`
	Rate     string `json:"rate"     validate:"required,uintstr"`
}

type deleteFlowReq struct {
	Token    string `json:"token"    validate:"required,token"`
	Receiver string `json:"receiver" validate:"required,hex32"`
}

type flowQuery struct {
	Token    string `query:"token"    validate:"required,token"`
	Sender   string `query:"sender"   validate:"required,hex32"`
	Receiver string `query:"receiver" validate:"required,hex32"`
}

// PutFlow creates (201) or updates (200) the caller's flow to receiver.
func (h *FlowHandler) PutFlow(c echo.Context) error {
	sender, ok := callerID(c)
	if !ok {
		return missingParty(c)
	}
	var req putFlowReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, created, err := h.uc.PutFlow(c.Request().Context(), stream.FlowInput{
		Token:    req.Token,
		Sender:   sender,
		Receiver: req.Receiver,
		Rate:     toAmount(req.Rate),
	})
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, dto)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FlowHandler) DeleteFlow(c echo.Context) error {
	sender, ok := callerID(c)
	if !ok {
		return missingParty(c)
	}
	var req deleteFlowReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	k := domain.Key{Token: req.Token, Sender: sender, Receiver: req.Receiver}
	if err := h.uc.DeleteFlow(c.Request().Context(), k); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FlowHandler) GetFlow(c echo.Context) error {
	q := flowQuery{
		Token:    c.QueryParam("token"),
		Sender:   c.QueryParam("sender"),
		Receiver: c.QueryParam("receiver"),
	}
	if err := c.Validate(&q); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.GetFlow(c.Request().Context(), domain.Key{Token: q.Token, Sender: q.Sender, Receiver: q.Receiver})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// NetFlow reports inbound, outbound and their signed difference for one account.
func (h *FlowHandler) NetFlow(c echo.Context) error {
	account := c.Param("account")
	if !id.Valid(account) {
		return badRequest(c, "account must be 32-char lowercase hex")
	}
	tok := c.QueryParam("token")
	if !reToken.MatchString(tok) {
		return badRequest(c, "token query param is required")
	}
	dto, err := h.uc.GetNetFlow(c.Request().Context(), tok, account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
