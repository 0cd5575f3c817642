package main

import (
	"flag"

	"github.com/joho/godotenv"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configsdatabase"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/database"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	migrateFlag := flag.Bool("migrate", false, "Run database migrations")
	seedFlag := flag.Bool("seed", false, "Run database seeders")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		configslog.SLog.Info("No .env file found, using environment variables only")
	}

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	database.Initialize(configsdatabase.GetDB(), *migrateFlag, *seedFlag)
}
