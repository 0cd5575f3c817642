package configsdatabase

import (
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alirezarastineh/PERSiBER-Event-Management-sub000/configs/configslog"
)

var db *gorm.DB

// InitDB opens the postgres connection used by the whole process.
// The DSN comes from DATABASE_DSN.
func InitDB() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=persiber password=persiber dbname=persiber port=5432 sslmode=disable"
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		configslog.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	db = conn
	configslog.SLog.Info("Database connection established")
}

// GetDB returns the shared connection. InitDB must have run first.
func GetDB() *gorm.DB {
	return db
}

// SetDB swaps the shared connection; used by tests to point the process at an
// in-memory store.
func SetDB(conn *gorm.DB) {
	db = conn
}

// CloseDB closes the underlying sql.DB.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("Failed to access underlying sql.DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("Failed to close database connection", zap.Error(err))
	}
}
