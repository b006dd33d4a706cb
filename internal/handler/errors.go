package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"school-ledger/internal/ledger"
	"school-ledger/internal/utils"
)

// respondError maps ledger errors onto HTTP statuses: validation failures
// are caller-fixable (422), conflicts 409, missing references 404, anything
// else is a storage-level 500 the caller may retry.
func respondError(c *fiber.Ctx, message string, err error) error {
	switch {
	case ledger.IsValidation(err):
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, message, err)
	case errors.Is(err, ledger.ErrAlreadyPosted):
		return utils.ErrorResponse(c, fiber.StatusConflict, message, err)
	case errors.Is(err, ledger.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, ledger.ErrAccountInUse):
		return utils.ErrorResponse(c, fiber.StatusConflict, message, err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
	}
}
