package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertStuckPromotion AlertType = "stuck_promotion"
	AlertReviewBacklog  AlertType = "review_backlog"
	AlertStaleReviews   AlertType = "stale_reviews"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a QueueSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *QueueSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	// A stuck promotion may mean an opportunity exists downstream that the
	// record does not reference.
	if n := len(snap.StuckPromotions); n > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertStuckPromotion,
			Severity: "high",
			Message: fmt.Sprintf(
				"%d record(s) updated for promotion but not promoted for over %d minutes",
				n, a.cfg.StuckPromotionMins,
			),
			Details: map[string]any{
				"record_ids":        snap.StuckPromotions,
				"promotion_pending": snap.PromotionPending,
			},
			Timestamp: now,
		})
	}

	if a.cfg.BacklogThreshold > 0 && snap.Pending() > a.cfg.BacklogThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertReviewBacklog,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Review backlog %d exceeds threshold %d",
				snap.Pending(), a.cfg.BacklogThreshold,
			),
			Details: map[string]any{
				"pending":   snap.Pending(),
				"threshold": a.cfg.BacklogThreshold,
			},
			Timestamp: now,
		})
	}

	if snap.StaleReviews > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertStaleReviews,
			Severity: "low",
			Message: fmt.Sprintf(
				"%d record(s) waiting for review longer than %dh",
				snap.StaleReviews, a.cfg.StaleReviewHours,
			),
			Details: map[string]any{
				"stale": snap.StaleReviews,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
