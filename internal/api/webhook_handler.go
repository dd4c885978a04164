package api

import (
	"AI-Content-Creator-Backend/internal/logging"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UpdateHandler interface {
	HandleUpdate(body []byte) error
}

type WebhookHandler struct {
	updates UpdateHandler
	log     *zap.Logger
}

func NewWebhookHandler(updates UpdateHandler) *WebhookHandler {
	return &WebhookHandler{updates: updates, log: logging.Named("webhook")}
}

// TelegramWebhookHandler always answers "ok" once the body is read, so
// Telegram does not redeliver updates the bot failed to act on.
func (h *WebhookHandler) TelegramWebhookHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}
	if err := h.updates.HandleUpdate(body); err != nil {
		h.log.Error("failed to handle telegram update", zap.Error(err))
	}
	c.String(http.StatusOK, "ok")
}
