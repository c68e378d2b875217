package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/core/events"
	"github.com/devrahi999/ihntopup/internal/core/metrics"
)

// EventHandler reacts to committed payments. Topup orders are handed to
// fulfillment here; actual delivery to the game vendor happens outside this
// system.
type EventHandler struct {
	repo   Repository
	logger *slog.Logger
}

func NewEventHandler(repo Repository, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *EventHandler) HandlePaymentCompleted(ctx context.Context, event events.Event) error {
	paymentEvent, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentCompletedEvent, got %T", event)
	}

	if paymentEvent.Kind != gateway.KindTopup {
		metrics.WalletCreditsCommitted.Inc()
		return nil
	}

	o, err := h.repo.GetByID(ctx, paymentEvent.IntentID)
	if err != nil {
		h.logger.Error("paid order not found for fulfillment",
			"error", err,
			"order_id", paymentEvent.IntentID,
			"event_id", paymentEvent.EventID())
		return fmt.Errorf("order %d not found: %w", paymentEvent.IntentID, err)
	}

	metrics.OrdersReadyForFulfillment.Inc()

	h.logger.Info("order ready for fulfillment",
		"order_id", o.ID,
		"user_id", o.UserID,
		"item", o.ItemName,
		"player_uid", o.PlayerUID,
		"amount", o.Amount,
		"payment_method", paymentEvent.PaymentMethod,
		"event_id", paymentEvent.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentCompleted, h.HandlePaymentCompleted)

	h.logger.Info("order event handlers registered",
		"handlers", []string{events.EventTypePaymentCompleted})
}
