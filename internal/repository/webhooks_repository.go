package repository

import (
	"time"

	"gorm.io/gorm"

	"product-import-service/internal/models"
)

type WebhooksRepository struct {
	db *gorm.DB
}

func NewWebhooksRepository(db *gorm.DB) *WebhooksRepository {
	return &WebhooksRepository{db: db}
}

// CreateWebhook registers a new webhook endpoint
func (r *WebhooksRepository) CreateWebhook(webhook *models.Webhook) error {
	webhook.CreatedAt = time.Now()
	webhook.UpdatedAt = time.Now()
	return r.db.Create(webhook).Error
}

// GetWebhookByID retrieves a webhook by ID
func (r *WebhooksRepository) GetWebhookByID(id uint) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := r.db.First(&webhook, id).Error; err != nil {
		return nil, err
	}
	return &webhook, nil
}

// GetWebhooks retrieves all registered webhooks
func (r *WebhooksRepository) GetWebhooks() ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := r.db.Order("created_at ASC").Find(&webhooks).Error; err != nil {
		return nil, err
	}
	return webhooks, nil
}

// GetEnabledByEvent retrieves enabled webhooks subscribed to an event type,
// oldest registration first so delivery order is stable.
func (r *WebhooksRepository) GetEnabledByEvent(eventType string) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.Where("event_type = ? AND is_enabled = ?", eventType, true).
		Order("id ASC").
		Find(&webhooks).Error
	if err != nil {
		return nil, err
	}
	return webhooks, nil
}

// UpdateWebhook applies a partial update to a webhook
func (r *WebhooksRepository) UpdateWebhook(id uint, req *models.UpdateWebhookRequest) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := r.db.First(&webhook, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.EventType != nil {
		updates["event_type"] = *req.EventType
	}
	if req.IsEnabled != nil {
		updates["is_enabled"] = *req.IsEnabled
	}

	if err := r.db.Model(&webhook).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := r.db.First(&webhook, id).Error; err != nil {
		return nil, err
	}
	return &webhook, nil
}

// DeleteWebhook deletes a webhook by ID. Returns gorm.ErrRecordNotFound when
// no row matched.
func (r *WebhooksRepository) DeleteWebhook(id uint) error {
	result := r.db.Delete(&models.Webhook{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordDelivery stores the outcome of the most recent delivery attempt.
// statusCode is nil when the endpoint could not be reached; elapsed is
// recorded either way.
func (r *WebhooksRepository) RecordDelivery(id uint, statusCode *int, elapsedMS int) error {
	return r.db.Model(&models.Webhook{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_response_code": statusCode,
			"last_response_ms":   elapsedMS,
			"updated_at":         time.Now(),
		}).Error
}
