package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/jeeves/internal/models"
	"github.com/codyseavey/jeeves/internal/services"
)

type CardHandler struct {
	lookup *services.LookupService
}

func NewCardHandler(lookup *services.LookupService) *CardHandler {
	return &CardHandler{
		lookup: lookup,
	}
}

type resolveResponse struct {
	*services.Resolution
	Document models.Document `json:"document"`
}

// ResolveCard answers GET /api/cards/resolve?q=&kind=
func (h *CardHandler) ResolveCard(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	kind, ok := models.ParseQueryKind(c.Query("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind parameter must be 'card', 'image' or 'flavor'"})
		return
	}

	res, doc, err := h.lookup.Lookup(kind, query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resolveResponse{Resolution: res, Document: doc})
}

// GetCard answers GET /api/cards/:code?kind=
func (h *CardHandler) GetCard(c *gin.Context) {
	kind, ok := models.ParseQueryKind(c.Query("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind parameter must be 'card', 'image' or 'flavor'"})
		return
	}

	card, doc, err := h.lookup.ByCode(kind, c.Param("code"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card, "document": doc})
}

type MessageRequest struct {
	Channel string `json:"channel"`
	Content string `json:"content" binding:"required"`
}

// HandleMessage runs a chat message through the same path the bot uses and
// returns the replies it would send.
func (h *CardHandler) HandleMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docs, err := h.lookup.HandleMessage(c.Request.Context(), req.Channel, req.Content)
	if docs == nil {
		docs = []models.Document{}
	}

	resp := gin.H{"documents": docs}
	if err != nil {
		resp["errors"] = splitJoined(err)
	}
	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	var malformed *services.MalformedCardError
	switch {
	case errors.Is(err, services.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmptyCatalog):
		return http.StatusServiceUnavailable
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// splitJoined unpacks an errors.Join result into its messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
