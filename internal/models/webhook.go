package models

import (
	"time"
)

// Event types emitted by the import pipeline
const (
	EventImportStarted   = "product.import.started"
	EventImportCompleted = "product.import.completed"
	EventImportFailed    = "product.import.failed"
)

// KnownEventTypes lists every event a webhook can subscribe to.
func KnownEventTypes() []string {
	return []string{EventImportStarted, EventImportCompleted, EventImportFailed}
}

// IsKnownEventType reports whether eventType is one a webhook can
// subscribe to.
func IsKnownEventType(eventType string) bool {
	for _, known := range KnownEventTypes() {
		if eventType == known {
			return true
		}
	}
	return false
}

// EventPayload is the JSON body posted to subscribers. Error is only set
// for failure events.
type EventPayload struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}

// Webhook is a registered HTTP endpoint for import lifecycle events.
// LastResponseCode and LastResponseMS record the outcome of the most recent
// delivery attempt; the code is nil when the endpoint was unreachable.
type Webhook struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	URL              string    `json:"url" gorm:"size:512;not null"`
	EventType        string    `json:"event_type" gorm:"size:64;not null;index"`
	IsEnabled        bool      `json:"is_enabled" gorm:"not null"`
	LastResponseCode *int      `json:"last_response_code"`
	LastResponseMS   *int      `json:"last_response_ms"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the table name for the Webhook model
func (Webhook) TableName() string {
	return "webhooks"
}

// CreateWebhookRequest represents the request to register a webhook
type CreateWebhookRequest struct {
	Name      string `json:"name" binding:"required"`
	URL       string `json:"url" binding:"required,url"`
	EventType string `json:"event_type" binding:"required"`
	IsEnabled *bool  `json:"is_enabled"`
}

// UpdateWebhookRequest represents a partial webhook update
type UpdateWebhookRequest struct {
	Name      *string `json:"name"`
	URL       *string `json:"url"`
	EventType *string `json:"event_type"`
	IsEnabled *bool   `json:"is_enabled"`
}

// WebhookTestResponse reports the result of a test delivery
type WebhookTestResponse struct {
	StatusCode int   `json:"status_code"`
	ElapsedMS  int64 `json:"elapsed_ms"`
}
