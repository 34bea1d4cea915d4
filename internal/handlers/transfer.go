package handlers

import (
	"errors"

	"paygate/internal/services/transfer"
	"paygate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the transfer endpoint.
type TransferHandler struct {
	service transfer.Service
}

func NewTransferHandler(s transfer.Service) *TransferHandler {
	return &TransferHandler{service: s}
}

// Transfer handles POST /api/accounts/transfer requests.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req struct {
		FromAccountID  uint            `json:"from_account_id"`
		ToAccountID    uint            `json:"to_account_id"`
		Amount         decimal.Decimal `json:"amount"`
		IdempotencyKey string          `json:"idempotency_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "INVALID_REQUEST", "invalid request body")
	}

	// The key may also arrive in the conventional header.
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Get("Idempotency-Key")
	}

	receipt, err := h.service.Transfer(c.Context(), transfer.Request{
		FromAccountID:  req.FromAccountID,
		ToAccountID:    req.ToAccountID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return transferError(c, err)
	}

	return response.Success(c, "transfer successful", receipt)
}

// transferError maps engine error kinds to transport-level responses. The
// engine never collapses kinds, so the mapping can be exhaustive here.
func transferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transfer.ErrInvalidRequest):
		return response.BadRequest(c, "INVALID_REQUEST", err.Error())
	case errors.Is(err, transfer.ErrDuplicateRequest):
		return response.BadRequest(c, "DUPLICATE_REQUEST", err.Error())
	case errors.Is(err, transfer.ErrAccountNotFound):
		return response.NotFound(c, "ACCOUNT_NOT_FOUND", err.Error())
	case errors.Is(err, transfer.ErrCurrencyMismatch):
		return response.BadRequest(c, "CURRENCY_MISMATCH", err.Error())
	case errors.Is(err, transfer.ErrInsufficientBalance):
		return response.Error(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, transfer.ErrConcurrentModification):
		return response.Error(c, fiber.StatusConflict, "CONCURRENT_MODIFICATION", "Concurrent modification detected. Please retry.")
	case errors.Is(err, transfer.ErrExternalUnavailable):
		return response.Error(c, fiber.StatusServiceUnavailable, "EXTERNAL_UNAVAILABLE", "Payment temporarily unavailable due to external system failure. Please retry.")
	case errors.Is(err, transfer.ErrTransferAborted):
		return response.ServerError(c, "transfer aborted, no changes were applied")
	default:
		return response.ServerError(c, "internal error")
	}
}
