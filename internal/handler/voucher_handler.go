package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"school-ledger/internal/middleware"
	"school-ledger/internal/models"
	"school-ledger/internal/service"
	"school-ledger/internal/utils"
)

type VoucherHandler struct {
	posting *service.PostingService
}

func NewVoucherHandler(posting *service.PostingService) *VoucherHandler {
	return &VoucherHandler{posting: posting}
}

// CreateVoucher validates and posts a voucher in one step.
func (h *VoucherHandler) CreateVoucher(c *fiber.Ctx) error {
	var req models.VoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	voucher, err := h.posting.PostRequest(c.Context(), req, middleware.UserID(c))
	if err != nil {
		return respondError(c, "Failed to post voucher", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Voucher posted successfully",
		"data":    voucher,
	})
}

// ValidateVoucher runs validation only, so the UI can check entries live as
// the operator edits line amounts. Nothing is committed.
func (h *VoucherHandler) ValidateVoucher(c *fiber.Ctx) error {
	var req models.VoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	voucher, err := h.posting.Validate(c.Context(), req, middleware.UserID(c))
	if err != nil {
		return respondError(c, "Voucher is not valid", err)
	}
	return utils.SuccessResponse(c, "Voucher is valid", fiber.Map{
		"lines": voucher.Lines,
	})
}

func (h *VoucherHandler) GetVouchers(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)

	filter := service.VoucherFilter{
		Type:   models.VoucherType(c.Query("type")),
		Limit:  params.Limit,
		Offset: utils.GetOffset(params.Page, params.Limit),
	}
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start date", err)
		}
		filter.StartDate = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid end date", err)
		}
		filter.EndDate = parsed
	}

	vouchers, total, err := h.posting.ListVouchers(c.Context(), filter)
	if err != nil {
		return respondError(c, "Failed to retrieve vouchers", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.SuccessResponse(c, "Vouchers retrieved successfully", fiber.Map{
		"vouchers":   vouchers,
		"pagination": pagination,
	})
}

func (h *VoucherHandler) GetVoucher(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid voucher ID", err)
	}

	voucher, err := h.posting.GetVoucher(c.Context(), id)
	if err != nil {
		return respondError(c, "Voucher not found", err)
	}
	return utils.SuccessResponse(c, "Voucher retrieved successfully", voucher)
}

// ReverseVoucher posts the debit/credit mirror of a posted voucher. The
// original stays in the ledger untouched.
func (h *VoucherHandler) ReverseVoucher(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid voucher ID", err)
	}

	var req models.ReverseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date, want YYYY-MM-DD", err)
	}

	reversal, err := h.posting.Reverse(c.Context(), id, date, req.Narration, middleware.UserID(c))
	if err != nil {
		return respondError(c, "Failed to reverse voucher", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Voucher reversed successfully",
		"data":    reversal,
	})
}
