package handlers

import (
	"errors"
	"strconv"

	"paygate/internal/services/account"
	"paygate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AccountHandler exposes the account provisioning endpoints.
type AccountHandler struct {
	service account.Service
}

func NewAccountHandler(s account.Service) *AccountHandler {
	return &AccountHandler{service: s}
}

// Create handles POST /api/accounts requests.
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name     string          `json:"name"`
		Balance  decimal.Decimal `json:"balance"`
		Currency string          `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "INVALID_REQUEST", "invalid request body")
	}

	acct, err := h.service.Create(c.Context(), req.Name, req.Balance, req.Currency)
	if err != nil {
		if errors.Is(err, account.ErrInvalidAccount) {
			return response.BadRequest(c, "INVALID_REQUEST", err.Error())
		}
		return response.ServerError(c, "failed to create account")
	}

	return response.Created(c, "account created", acct)
}

// Get handles GET /api/accounts/:id requests.
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_REQUEST", "invalid account id")
	}

	acct, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return response.NotFound(c, "ACCOUNT_NOT_FOUND", err.Error())
		}
		return response.ServerError(c, "failed to get account")
	}

	return response.Success(c, "account", acct)
}

// List handles GET /api/accounts requests.
func (h *AccountHandler) List(c *fiber.Ctx) error {
	accounts, err := h.service.List(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list accounts")
	}
	return response.Success(c, "accounts", accounts)
}

// Delete handles DELETE /api/accounts/:id requests.
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_REQUEST", "invalid account id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return response.NotFound(c, "ACCOUNT_NOT_FOUND", err.Error())
		}
		return response.ServerError(c, "failed to delete account")
	}

	return response.Success(c, "account deleted", nil)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
