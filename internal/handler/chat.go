package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	pipeline *service.ChatPipeline
}

// NewChatHandler creates a new chat handler
func NewChatHandler(pipeline *service.ChatPipeline) *ChatHandler {
	return &ChatHandler{pipeline: pipeline}
}

// Chat handles POST /api/v1/chat. Always answers 200 with a response string;
// pipeline failures are already downgraded to fixed replies.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response := h.pipeline.Respond(c.Request.Context(), req.Message, req.History)
	c.JSON(http.StatusOK, model.ChatResponse{Response: response})
}
