package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/jeeves/internal/services"
)

type CatalogHandler struct {
	store    *services.CatalogStore
	reloader services.CatalogReloader
	refresh  *services.RefreshWorker
}

func NewCatalogHandler(store *services.CatalogStore, reloader services.CatalogReloader, refresh *services.RefreshWorker) *CatalogHandler {
	return &CatalogHandler{
		store:    store,
		reloader: reloader,
		refresh:  refresh,
	}
}

func (h *CatalogHandler) GetStatus(c *gin.Context) {
	snap := h.store.Snapshot()

	resp := gin.H{
		"generation": snap.Generation(),
		"cards":      snap.CardCount(),
		"packs":      snap.PackCount(),
		"cycles":     snap.CycleCount(),
		"ban_list":   snap.BanListName(),
	}
	if !snap.LoadedAt().IsZero() {
		resp["loaded_at"] = snap.LoadedAt().Format(time.RFC3339)
	}
	if h.refresh != nil {
		resp["refresh"] = h.refresh.Status()
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Reload(c *gin.Context) {
	count, err := h.reloader.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
			"cards": h.store.Snapshot().CardCount(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "catalog reloaded",
		"cards":   count,
	})
}
