package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/jeeves/internal/models"
)

// RunMigrations runs data maintenance after schema changes. It is safe to
// run on every start.
func RunMigrations(db *gorm.DB, retention time.Duration, log *zap.Logger) error {
	if err := normalizeLookupKinds(db, log); err != nil {
		return err
	}
	return PruneLookupHistory(db, retention, log)
}

// normalizeLookupKinds fills in the kind of rows written before the column
// was required; those were all full-card lookups.
func normalizeLookupKinds(db *gorm.DB, log *zap.Logger) error {
	if !db.Migrator().HasTable(&models.LookupRecord{}) {
		return nil
	}

	result := db.Model(&models.LookupRecord{}).
		Where("kind IS NULL OR kind = ''").
		Update("kind", models.QueryCard)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Info("backfilled lookup kinds", zap.Int64("rows", result.RowsAffected))
	}
	return nil
}

// PruneLookupHistory deletes lookup rows older than retention. A zero
// retention keeps everything.
func PruneLookupHistory(db *gorm.DB, retention time.Duration, log *zap.Logger) error {
	if retention <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-retention)
	result := db.Where("created_at < ?", cutoff).Delete(&models.LookupRecord{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Info("pruned lookup history",
			zap.Int64("rows", result.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
	return nil
}
