package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/jeeves/internal/models"
)

const defaultHistoryLimit = 50

// HistoryReader is satisfied by database.HistoryStore.
type HistoryReader interface {
	Recent(limit int) ([]models.LookupRecord, error)
}

type HistoryHandler struct {
	history HistoryReader
}

func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) GetRecent(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lookup history is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.history.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lookups": records})
}
