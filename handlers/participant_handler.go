package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/pkg/queryparams"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/services"
)

// ParticipantHandler serves the CRUD surface for one roster. It only
// translates between HTTP and the ledger; every rule lives in the service.
type ParticipantHandler struct {
	roster string
	ledger services.ILedgerService
}

// NewParticipantHandler builds a handler bound to a roster key.
func NewParticipantHandler(roster string) *ParticipantHandler {
	return &ParticipantHandler{
		roster: roster,
		ledger: services.NewLedgerService(),
	}
}

// List handles GET /. Pagination and filtering come from query params.
func (h *ParticipantHandler) List(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query parameters"})
	}
	result, err := h.ledger.List(c.UserContext(), h.roster, params)
	if err != nil {
		configslog.Log.Error("List participants failed", zap.String("roster", h.roster), zap.Error(err))
		return errorJSON(c, err)
	}
	return c.JSON(result)
}

// Get handles GET /:id.
func (h *ParticipantHandler) Get(c *fiber.Ctx) error {
	p, err := h.ledger.Get(c.UserContext(), h.roster, c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(p)
}

// Create handles POST /. The findOrCreate query flag opts into upsert
// semantics where the roster allows them (guest QR-scan flow).
func (h *ParticipantHandler) Create(c *fiber.Ctx) error {
	var input services.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	opts := services.CreateOptions{FindOrCreate: c.QueryBool("findOrCreate")}

	p, err := h.ledger.Create(c.UserContext(), h.roster, input, opts)
	if err != nil {
		configslog.Log.Warn("Create participant failed",
			zap.String("roster", h.roster), zap.String("name", input.Name), zap.Error(err))
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// Update handles PATCH /:id.
func (h *ParticipantHandler) Update(c *fiber.Ctx) error {
	var patch services.UpdateInput
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	p, err := h.ledger.Update(c.UserContext(), h.roster, c.Params("id"), patch)
	if err != nil {
		configslog.Log.Warn("Update participant failed",
			zap.String("roster", h.roster), zap.String("id", c.Params("id")), zap.Error(err))
		return errorJSON(c, err)
	}
	return c.JSON(p)
}

// Delete handles DELETE /:id.
func (h *ParticipantHandler) Delete(c *fiber.Ctx) error {
	if err := h.ledger.Delete(c.UserContext(), h.roster, c.Params("id")); err != nil {
		configslog.Log.Warn("Delete participant failed",
			zap.String("roster", h.roster), zap.String("id", c.Params("id")), zap.Error(err))
		return errorJSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAttended handles POST /:id/attend (door scan).
func (h *ParticipantHandler) MarkAttended(c *fiber.Ctx) error {
	return h.patchAttendance(c, models.AttendanceAttended)
}

// UnmarkAttended handles POST /:id/unattend (mis-scan correction).
func (h *ParticipantHandler) UnmarkAttended(c *fiber.Ctx) error {
	return h.patchAttendance(c, models.AttendanceNotAttended)
}

func (h *ParticipantHandler) patchAttendance(c *fiber.Ctx, status models.AttendanceStatus) error {
	patch := services.UpdateInput{Attended: &status}
	p, err := h.ledger.Update(c.UserContext(), h.roster, c.Params("id"), patch)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(p)
}
