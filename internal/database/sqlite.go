package database

import (
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/jeeves/internal/models"
)

var DB *gorm.DB

func Initialize(dbPath string, log *zap.Logger) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	log.Info("database connected", zap.String("path", dbPath))

	// Auto-migrate the schema
	err = DB.AutoMigrate(&models.LookupRecord{})
	if err != nil {
		return err
	}

	log.Info("database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
