package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/services"
)

// LedgerAdminHandler serves roster-wide maintenance: discount toggles,
// full recompute, and the statistics projection.
type LedgerAdminHandler struct {
	roster string
	ledger services.ILedgerService
	stats  services.IStatsService
}

// NewLedgerAdminHandler builds the admin surface for one roster.
func NewLedgerAdminHandler(roster string) *LedgerAdminHandler {
	return &LedgerAdminHandler{
		roster: roster,
		ledger: services.NewLedgerService(),
		stats:  services.NewStatsService(),
	}
}

type toggleDiscountRequest struct {
	Active bool `json:"active"`
}

// ToggleDiscount handles POST /discounts/:kind (guest roster only).
func (h *LedgerAdminHandler) ToggleDiscount(c *fiber.Ctx) error {
	kind := models.DiscountKind(c.Params("kind"))
	var req toggleDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.ledger.ToggleDiscount(c.UserContext(), h.roster, kind, req.Active); err != nil {
		configslog.Log.Warn("Toggle discount failed",
			zap.String("roster", h.roster), zap.String("kind", string(kind)), zap.Error(err))
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"kind": kind, "active": req.Active})
}

// Recompute handles POST /recompute: full rebuild of the derived fields.
func (h *LedgerAdminHandler) Recompute(c *fiber.Ctx) error {
	if err := h.ledger.Recompute(c.UserContext(), h.roster); err != nil {
		configslog.Log.Error("Recompute failed", zap.String("roster", h.roster), zap.Error(err))
		return errorJSON(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Statistics handles GET /statistics. The privileged flag is the upstream
// layer's claim; authorization itself lives outside this service.
func (h *LedgerAdminHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.UserContext(), h.roster, c.QueryBool("privileged"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(stats)
}
