package handler

import (
	"storefront/internal/config"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type createIntentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	OrderID int64           `json:"order_id"`
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func (h *PaymentHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/payments", authMiddlewares(cfg, userRepo)...)

	g.POST("/intent", h.createIntent)
	g.POST("/confirm", h.confirm)
}

func (h *PaymentHandler) createIntent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	var req createIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.CreateIntent(c.Request().Context(), p, usecase.CreateIntentInput{
		Amount:  req.Amount,
		OrderID: req.OrderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *PaymentHandler) confirm(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	var req confirmPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ConfirmPayment(c.Request().Context(), p, req.PaymentIntentID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
