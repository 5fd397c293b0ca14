package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soccz/young-and-home/internal/domain"
	"github.com/soccz/young-and-home/internal/metrics"
)

// Watcher consumes registry change events and fans them out to
// subscribed users as alerts.
type Watcher struct {
	bus     domain.EventBus
	repo    domain.Repository
	cache   domain.Cache
	cfg     domain.MonitoringConfig
	metrics *metrics.Metrics // optional

	subscriptions []domain.BusSubscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWatcher creates a new async alert watcher.
func NewWatcher(bus domain.EventBus, repo domain.Repository, cache domain.Cache, cfg domain.MonitoringConfig, m *metrics.Metrics) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.AlertWindowSecs <= 0 {
		cfg.AlertWindowSecs = 3600
	}
	if cfg.MaxAlertsPerWindow <= 0 {
		cfg.MaxAlertsPerWindow = 3
	}

	return &Watcher{
		bus:     bus,
		repo:    repo,
		cache:   cache,
		cfg:     cfg,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes to registry change events.
func (w *Watcher) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicRegistryChanged, w.handleChange)
	if err != nil {
		return fmt.Errorf("failed to subscribe to registry changes: %w", err)
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("alert watcher started",
		"topic", domain.TopicRegistryChanged,
		"alert_window_secs", w.cfg.AlertWindowSecs,
		"max_alerts_per_window", w.cfg.MaxAlertsPerWindow,
	)

	return nil
}

// handleChange processes one registry change event.
func (w *Watcher) handleChange(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var event domain.RegistryChangedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		slog.Error("failed to parse registry change event",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Suppress alert bursts for the same address.
	window := time.Duration(w.cfg.AlertWindowSecs) * time.Second
	count, err := w.cache.IncrementCounter(ctx, "alerts:"+event.Address, window)
	if err != nil {
		slog.Error("alert counter failed",
			"address", event.Address,
			"error", err,
		)
	} else if count > w.cfg.MaxAlertsPerWindow {
		slog.Info("alert suppressed",
			"address", event.Address,
			"count", count,
		)
		return nil
	}

	subs, err := w.repo.ListSubscriptions(ctx)
	if err != nil {
		slog.Error("failed to list subscriptions",
			"error", err,
		)
		return err
	}

	matched := 0
	for _, sub := range subs {
		if !matchesLocation(event.Address, sub.Location) {
			continue
		}
		matched++

		alert := &domain.Alert{
			UserID:     sub.UserID,
			Address:    event.Address,
			ChangeType: "registry",
			Details: fmt.Sprintf("registry changed (%s -> %s), risk level %s",
				shortHash(event.PreviousHash), shortHash(event.CurrentHash), event.RiskLevel),
			RiskScore: event.RiskScore,
			Status:    domain.AlertPending,
			CreatedAt: time.Now().UTC(),
		}

		id, err := w.repo.SaveAlert(ctx, alert)
		if err != nil {
			slog.Error("failed to save alert",
				"user_id", sub.UserID,
				"address", event.Address,
				"error", err,
			)
			continue
		}
		alert.ID = id
		if w.metrics != nil {
			w.metrics.IncrementAlertsCreated()
		}

		payload, _ := json.Marshal(alert)
		if err := w.bus.Publish(ctx, domain.TopicAlert, payload); err != nil {
			slog.Error("failed to publish alert",
				"alert_id", id,
				"error", err,
			)
		}
	}

	slog.Info("registry change processed",
		"address", event.Address,
		"subscribers_matched", matched,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// matchesLocation reports whether a subscription location covers the
// address. Locations are district or neighborhood fragments, matched
// by substring.
func matchesLocation(address, location string) bool {
	if location == "" {
		return false
	}
	return strings.Contains(address, location)
}

func shortHash(hash string) string {
	if hash == "" {
		return "none"
	}
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	slog.Info("alert watcher stopped")
	return nil
}

// Stats returns watcher statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current watcher statistics.
func (w *Watcher) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
