package handlers

import (
	"net/http"

	"tempobook/models"
	"tempobook/services/dialogue"
	"tempobook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler receives messages from the messaging channel webhook.
type ChatHandler struct {
	Dialogue *dialogue.Service
	Logger   *zap.Logger
}

func NewChatHandler(svc *dialogue.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Dialogue: svc, Logger: logger}
}

// HandleChat processes one inbound message and returns the reply to deliver.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if req.Phone == "" || req.Message == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "phone and message are required")
		return
	}

	reply, err := h.Dialogue.HandleMessage(c.Request.Context(), req.Phone, req.Message)
	if err != nil {
		h.Logger.Error("failed to handle message",
			zap.String("phone", req.Phone), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", "Please try again later")
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Phone:    req.Phone,
		Response: reply,
	})
}
