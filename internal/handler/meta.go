package handler

import (
	"net/http"

	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// MetaHandler serves derived read-only views over the record store, used to
// populate filter choices in clients
type MetaHandler struct {
	store *repository.Store
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(store *repository.Store) *MetaHandler {
	return &MetaHandler{store: store}
}

// Categories handles GET /api/v1/categories
func (h *MetaHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Categories())
}

// Quotas handles GET /api/v1/quotas
func (h *MetaHandler) Quotas(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Quotas())
}

// Programs handles GET /api/v1/programs
func (h *MetaHandler) Programs(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Programs())
}

// Stats handles GET /api/v1/stats
func (h *MetaHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}
