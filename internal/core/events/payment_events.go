package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentCancelled = "payment.cancelled"
)

// PaymentCompletedEvent fires exactly once per intent, from the reconciliation
// commit path. The order fulfillment notifier subscribes to it.
type PaymentCompletedEvent struct {
	BaseEvent
	Kind          string  `json:"kind"`
	IntentID      int64   `json:"intent_id"`
	UserID        int64   `json:"user_id"`
	GatewayTxnID  string  `json:"gateway_txn_id"`
	ProviderTrxID string  `json:"provider_trx_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

func NewPaymentCompletedEvent(kind string, intentID, userID int64, gatewayTxnID, providerTrxID string, amount float64, paymentMethod string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"kind":            kind,
				"intent_id":       intentID,
				"user_id":         userID,
				"gateway_txn_id":  gatewayTxnID,
				"provider_trx_id": providerTrxID,
				"amount":          amount,
				"payment_method":  paymentMethod,
			},
		},
		Kind:          kind,
		IntentID:      intentID,
		UserID:        userID,
		GatewayTxnID:  gatewayTxnID,
		ProviderTrxID: providerTrxID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
	}
}

// PaymentCancelledEvent fires when the cancellation sweep resolves intents to
// cancelled. Count covers every row the sweep touched.
type PaymentCancelledEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	GatewayTxnID string `json:"gateway_txn_id"`
	Reason       string `json:"reason"`
	Count        int    `json:"count"`
}

func NewPaymentCancelledEvent(userID int64, gatewayTxnID, reason string, count int) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCancelled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":        userID,
				"gateway_txn_id": gatewayTxnID,
				"reason":         reason,
				"count":          count,
			},
		},
		UserID:       userID,
		GatewayTxnID: gatewayTxnID,
		Reason:       reason,
		Count:        count,
	}
}
