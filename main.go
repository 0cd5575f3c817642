package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configsdatabase"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/database"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/routes"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	cfg := configs.LoadConfig()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	// Migrations are idempotent; running them at boot keeps single-node
	// deployments simple. database/cmd exists for operators who migrate
	// separately.
	database.Initialize(configsdatabase.GetDB(), true, true)

	app := fiber.New(fiber.Config{
		AppName: "persiber-ledger",
	})
	routes.SetupRoutes(app)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			configslog.Log.Fatal("Server stopped", zap.Error(err))
		}
	}()
	configslog.SLog.Infof("Listening on %s", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	configslog.SLog.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		configslog.Log.Error("Shutdown failed", zap.Error(err))
	}
}
