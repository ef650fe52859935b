package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codyseavey/jeeves/internal/metrics"
	"github.com/codyseavey/jeeves/internal/models"
)

const maxRecentLookups = 500

// HistoryStore keeps the lookup history in sqlite.
type HistoryStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHistoryStore(db *gorm.DB, log *zap.Logger) *HistoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryStore{db: db, log: log}
}

// Record saves rec in the background so the chat path never waits on disk.
func (h *HistoryStore) Record(rec models.LookupRecord) {
	go func(rec models.LookupRecord) {
		if err := h.Save(rec); err != nil {
			metrics.HistoryWriteErrorsTotal.Inc()
			h.log.Warn("failed to save lookup", zap.String("query", rec.Query), zap.Error(err))
		}
	}(rec)
}

func (h *HistoryStore) Save(rec models.LookupRecord) error {
	return h.db.Create(&rec).Error
}

// Recent returns up to limit lookups, newest first.
func (h *HistoryStore) Recent(limit int) ([]models.LookupRecord, error) {
	if limit <= 0 || limit > maxRecentLookups {
		limit = maxRecentLookups
	}

	var records []models.LookupRecord
	err := h.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
