package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"product-import-service/internal/models"
)

const (
	dispatchTimeout = 5 * time.Second
	testTimeout     = 10 * time.Second
)

// Store is the slice of webhook persistence the dispatcher needs.
type Store interface {
	GetEnabledByEvent(eventType string) ([]models.Webhook, error)
	RecordDelivery(id uint, statusCode *int, elapsedMS int) error
}

// Dispatcher posts lifecycle events to registered subscriber endpoints.
// Deliveries are at-most-one attempt, sequential, and best-effort: a
// subscriber that is down or slow is recorded against that webhook and
// otherwise ignored.
type Dispatcher struct {
	store  Store
	client *http.Client
	log    *logrus.Logger
}

func NewDispatcher(store Store, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		client: &http.Client{},
		log:    log,
	}
}

// Dispatch delivers an event to every enabled webhook subscribed to it.
// Each attempt records the response code (nil when unreachable) and the
// round-trip time on the webhook, success or not.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, payload models.EventPayload) {
	subscribers, err := d.store.GetEnabledByEvent(eventType)
	if err != nil {
		d.log.WithError(err).WithField("event_type", eventType).Error("Failed to load webhook subscribers")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.log.WithError(err).Error("Failed to encode webhook payload")
		return
	}

	for _, webhook := range subscribers {
		statusCode, elapsedMS := d.post(ctx, webhook.URL, body, dispatchTimeout)
		if err := d.store.RecordDelivery(webhook.ID, statusCode, elapsedMS); err != nil {
			d.log.WithError(err).WithField("webhook_id", webhook.ID).Error("Failed to record webhook delivery")
		}

		entry := d.log.WithFields(logrus.Fields{
			"webhook_id": webhook.ID,
			"event_type": eventType,
			"elapsed_ms": elapsedMS,
		})
		if statusCode == nil {
			entry.Warn("Webhook delivery failed")
		} else {
			entry.WithField("status_code", *statusCode).Debug("Webhook delivered")
		}
	}
}

// Test fires a single delivery at one webhook with a longer timeout. The
// outcome is recorded on the webhook exactly like a pipeline dispatch, and
// returned so the caller can report it. A transport-level failure returns
// an error with elapsed time still measured.
func (d *Dispatcher) Test(ctx context.Context, webhook *models.Webhook, payload interface{}) (*models.WebhookTestResponse, int, error) {
	if payload == nil {
		payload = map[string]interface{}{"event": webhook.EventType, "test": true}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode test payload: %w", err)
	}

	statusCode, elapsedMS := d.post(ctx, webhook.URL, body, testTimeout)
	if err := d.store.RecordDelivery(webhook.ID, statusCode, elapsedMS); err != nil {
		d.log.WithError(err).WithField("webhook_id", webhook.ID).Error("Failed to record webhook delivery")
	}

	if statusCode == nil {
		return nil, elapsedMS, fmt.Errorf("webhook endpoint unreachable")
	}
	return &models.WebhookTestResponse{
		StatusCode: *statusCode,
		ElapsedMS:  int64(elapsedMS),
	}, elapsedMS, nil
}

// post issues one delivery attempt. The returned status code is nil when no
// HTTP response was received; elapsed milliseconds are measured either way.
func (d *Dispatcher) post(ctx context.Context, url string, body []byte, timeout time.Duration) (*int, int) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, int(time.Since(start).Milliseconds())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	elapsedMS := int(time.Since(start).Milliseconds())
	if err != nil {
		return nil, elapsedMS
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	return &code, elapsedMS
}
