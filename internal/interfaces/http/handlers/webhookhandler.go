package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usecases "marketplace/internal/application/payment/usecases"
	"marketplace/internal/shared/logger"
)

// WebhookHandler receives provider payment notifications. It answers
// 200 for every deliverable notification, malformed ones included
// after logging, because the provider retries anything else
// indefinitely. Only an unreadable body gets a 400.
type WebhookHandler struct {
	webhookUC *usecases.HandleWebhookUseCase
	logger    logger.Interface
}

func NewWebhookHandler(webhookUC *usecases.HandleWebhookUseCase, log logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		webhookUC: webhookUC,
		logger:    log,
	}
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	cmd := usecases.WebhookCommand{
		Type:   c.Query("type"),
		DataID: c.Query("data.id"),
	}

	// Newer notification versions carry a JSON body instead of query
	// parameters.
	if cmd.DataID == "" {
		var body webhookBody
		if err := c.ShouldBindJSON(&body); err != nil {
			h.logger.Warnw("webhook body unreadable", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"status": "malformed"})
			return
		}
		cmd.Type = body.Type
		cmd.DataID = body.Data.ID
	}

	status := h.webhookUC.Execute(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}
