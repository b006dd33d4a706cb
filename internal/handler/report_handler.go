package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"school-ledger/internal/service"
	"school-ledger/internal/utils"
)

type ReportHandler struct {
	reports *service.ReportService
	tasks   service.TaskEnqueuer
}

func NewReportHandler(reports *service.ReportService, tasks service.TaskEnqueuer) *ReportHandler {
	return &ReportHandler{reports: reports, tasks: tasks}
}

func (h *ReportHandler) ProfitAndLoss(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "start and end are required as YYYY-MM-DD", err)
	}

	report, err := h.reports.ProfitAndLoss(c.Context(), start, end)
	if err != nil {
		return respondError(c, "Failed to build profit and loss report", err)
	}
	return utils.SuccessResponse(c, "Profit and loss report", report)
}

func (h *ReportHandler) TrialBalance(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "start and end are required as YYYY-MM-DD", err)
	}

	report, err := h.reports.TrialBalance(c.Context(), start, end)
	if err != nil {
		return respondError(c, "Failed to build trial balance", err)
	}
	return utils.SuccessResponse(c, "Trial balance report", report)
}

func (h *ReportHandler) BalanceSheet(c *fiber.Ctx) error {
	raw := c.Query("as_of")
	if raw == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "as_of is required as YYYY-MM-DD", nil)
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid as_of date", err)
	}

	report, err := h.reports.BalanceSheet(c.Context(), asOf)
	if err != nil {
		return respondError(c, "Failed to build balance sheet", err)
	}
	return utils.SuccessResponse(c, "Balance sheet report", report)
}

// VerifyBalances queues a background check that every materialized balance
// still matches a replay of the ledger log.
func (h *ReportHandler) VerifyBalances(c *fiber.Ctx) error {
	if h.tasks == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background jobs are disabled", nil)
	}
	if err := h.tasks.EnqueueVerifyBalances(c.Context()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enqueue verification", err)
	}
	return utils.SuccessResponse(c, "Balance verification queued", nil)
}

// parseDateRange reads the required start and end query parameters.
func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("missing start or end")
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end before start")
	}
	return start, end, nil
}
