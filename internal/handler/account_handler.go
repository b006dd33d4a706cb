package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"school-ledger/internal/ledger"
	"school-ledger/internal/models"
	"school-ledger/internal/service"
	"school-ledger/internal/utils"
)

type AccountHandler struct {
	accounts *service.AccountService
	reports  *service.ReportService
}

func NewAccountHandler(accounts *service.AccountService, reports *service.ReportService) *AccountHandler {
	return &AccountHandler{accounts: accounts, reports: reports}
}

func (h *AccountHandler) GetAccounts(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)

	filter := service.AccountFilter{
		Type:       models.AccountType(c.Query("type")),
		ActiveOnly: c.QueryBool("active"),
		Search:     params.Search,
		Limit:      params.Limit,
		Offset:     utils.GetOffset(params.Page, params.Limit),
	}

	accounts, total, err := h.accounts.List(c.Context(), filter)
	if err != nil {
		return respondError(c, "Failed to retrieve accounts", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.SuccessResponse(c, "Accounts retrieved successfully", fiber.Map{
		"accounts":   accounts,
		"pagination": pagination,
	})
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	account, err := h.accounts.Get(c.Context(), id)
	if err != nil {
		return respondError(c, "Account not found", err)
	}
	return utils.SuccessResponse(c, "Account retrieved successfully", account)
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req models.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Code == "" || req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Account code and name are required", nil)
	}

	account, err := h.accounts.Create(c.Context(), req)
	if err != nil {
		return respondError(c, "Failed to create account", err)
	}
	return utils.SuccessResponse(c, "Account created successfully", account)
}

func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	var req models.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	account, err := h.accounts.Update(c.Context(), id, req)
	if err != nil {
		return respondError(c, "Failed to update account", err)
	}
	return utils.SuccessResponse(c, "Account updated successfully", account)
}

// DeleteAccount removes an unused account outright; an account with posted
// lines is deactivated instead so audit history survives.
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	err = h.accounts.Delete(c.Context(), id)
	if err == nil {
		return utils.SuccessResponse(c, "Account deleted successfully", nil)
	}
	if !errors.Is(err, ledger.ErrAccountInUse) {
		return respondError(c, "Failed to delete account", err)
	}

	account, err := h.accounts.Deactivate(c.Context(), id)
	if err != nil {
		return respondError(c, "Failed to deactivate account", err)
	}
	return utils.SuccessResponse(c, "Account has posted lines; deactivated instead", account)
}

func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid as_of date, want YYYY-MM-DD", err)
		}
		asOf = &parsed
	}

	balance, err := h.reports.GetBalance(c.Context(), id, asOf)
	if err != nil {
		return respondError(c, "Failed to retrieve balance", err)
	}
	return utils.SuccessResponse(c, "Balance retrieved successfully", fiber.Map{
		"account_id": id,
		"balance":    balance,
	})
}

func (h *AccountHandler) GetLedger(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range, want start and end as YYYY-MM-DD", err)
	}

	params := utils.GetPaginationParams(c)
	lines, total, err := h.reports.GetLedger(c.Context(), id, start, end, params.Limit, utils.GetOffset(params.Page, params.Limit))
	if err != nil {
		return respondError(c, "Failed to retrieve ledger", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.SuccessResponse(c, "Ledger retrieved successfully", fiber.Map{
		"lines":      lines,
		"pagination": pagination,
	})
}
