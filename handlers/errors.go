package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/services"
)

// statusForError maps the ledger error taxonomy onto HTTP statuses. Everything
// in the taxonomy is a client-input error; only unknown errors become 500s.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrUnknownRoster):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateName),
		errors.Is(err, services.ErrAlreadyAttended):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrRosterBusy):
		// Transient lock-wait expiry: the client may retry as-is.
		return fiber.StatusTooManyRequests
	case errors.Is(err, services.ErrSelfInvitation),
		errors.Is(err, services.ErrUnknownInviter),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrDiscountUnsupported):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
