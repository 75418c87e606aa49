package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"product-import-service/internal/models"
	"product-import-service/internal/repository"
	"product-import-service/internal/webhooks"
)

type WebhooksHandler struct {
	repo       *repository.WebhooksRepository
	dispatcher *webhooks.Dispatcher
}

func NewWebhooksHandler(repo *repository.WebhooksRepository, dispatcher *webhooks.Dispatcher) *WebhooksHandler {
	return &WebhooksHandler{repo: repo, dispatcher: dispatcher}
}

// ListWebhooks returns all registered webhooks
// GET /api/v1/webhooks
func (h *WebhooksHandler) ListWebhooks(c *gin.Context) {
	hooks, err := h.repo.GetWebhooks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list webhooks"})
		return
	}
	c.JSON(http.StatusOK, hooks)
}

// CreateWebhook registers a new webhook
// POST /api/v1/webhooks
func (h *WebhooksHandler) CreateWebhook(c *gin.Context) {
	var req models.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if !models.IsKnownEventType(req.EventType) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Unknown event type: " + req.EventType})
		return
	}

	webhook := models.Webhook{
		Name:      req.Name,
		URL:       req.URL,
		EventType: req.EventType,
		IsEnabled: true,
	}
	if req.IsEnabled != nil {
		webhook.IsEnabled = *req.IsEnabled
	}

	if err := h.repo.CreateWebhook(&webhook); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, webhook)
}

// UpdateWebhook applies a partial update
// PUT /api/v1/webhooks/:id
func (h *WebhooksHandler) UpdateWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid webhook ID"})
		return
	}

	var req models.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if req.EventType != nil && !models.IsKnownEventType(*req.EventType) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Unknown event type: " + *req.EventType})
		return
	}

	webhook, err := h.repo.UpdateWebhook(uint(id), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Webhook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update webhook"})
		return
	}
	c.JSON(http.StatusOK, webhook)
}

// DeleteWebhook removes a webhook
// DELETE /api/v1/webhooks/:id
func (h *WebhooksHandler) DeleteWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid webhook ID"})
		return
	}

	if err := h.repo.DeleteWebhook(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Webhook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete webhook"})
		return
	}
	c.Status(http.StatusNoContent)
}

// TestWebhook fires one test delivery at a webhook and reports the outcome.
// An unreachable endpoint is a 502 with the elapsed time still measured.
// POST /api/v1/webhooks/:id/test
func (h *WebhooksHandler) TestWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid webhook ID"})
		return
	}

	webhook, err := h.repo.GetWebhookByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Webhook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load webhook"})
		return
	}

	var payload map[string]interface{}
	_ = c.ShouldBindJSON(&payload)
	var testPayload interface{}
	if len(payload) > 0 {
		testPayload = payload
	}

	result, elapsedMS, err := h.dispatcher.Test(c.Request.Context(), webhook, testPayload)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      err.Error(),
			"elapsed_ms": elapsedMS,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}
