package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/handlers"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/models"
)

// SetupRoutes wires the JSON API. One group per roster, same shape everywhere;
// the discount endpoints exist only where the roster supports coupons.
// Authentication belongs to the surrounding deployment and is not wired here.
func SetupRoutes(app *fiber.App) {
	app.Use(recoverMiddleware.New())
	app.Use(logger.New())

	api := app.Group("/api")
	for _, roster := range models.RosterKeys() {
		registerRosterRoutes(api, roster)
	}

	app.Use(notFoundHandler)
}

func registerRosterRoutes(api fiber.Router, roster string) {
	cfg, _ := models.RosterByKey(roster)
	ph := handlers.NewParticipantHandler(roster)
	ah := handlers.NewLedgerAdminHandler(roster)

	group := api.Group("/" + roster)
	group.Get("/", ph.List)
	group.Post("/", ph.Create)
	group.Get("/statistics", ah.Statistics)
	group.Post("/recompute", ah.Recompute)
	if cfg.HasCoupons {
		group.Post("/discounts/:kind", ah.ToggleDiscount)
	}
	group.Get("/:id", ph.Get)
	group.Patch("/:id", ph.Update)
	group.Delete("/:id", ph.Delete)
	group.Post("/:id/attend", ph.MarkAttended)
	group.Post("/:id/unattend", ph.UnmarkAttended)
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found"})
}
