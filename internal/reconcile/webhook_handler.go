package reconcile

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/devrahi999/ihntopup/internal/transport"
	"github.com/devrahi999/ihntopup/pkg/logger"
)

// WebhookHandler receives the gateway's server-to-server notification.
// It always answers 200: the webhook is only a trigger, verification against
// the gateway decides the outcome, and a non-200 would make the provider
// retry a notification we have already acted on.
type WebhookHandler struct {
	*transport.BaseHandler
	service ServiceAPI
	logger  *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, service ServiceAPI, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		service:     service,
		logger:      logger,
	}
}

type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	lg := logger.From(r.Context())

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lg.Error("payment webhook: invalid body", "error", err)
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "ignored", Message: "invalid body"})
		return
	}

	ref := req.Ref()
	if ref == "" {
		lg.Error("payment webhook: missing transaction reference")
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "ignored", Message: "missing transaction_id"})
		return
	}

	lg.Info("received payment webhook",
		"transaction_id", ref,
		"claimed_status", req.Status,
		"payment_method", req.PaymentMethod)

	result, err := h.service.Reconcile(r.Context(), ref, req.PaymentMethod)
	if err != nil {
		lg.Error("payment webhook: reconciliation failed",
			"transaction_id", ref,
			"error", err)
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "error", Message: "reconciliation failed"})
		return
	}

	lg.Info("payment webhook processed",
		"transaction_id", ref,
		"result", result.Status)

	h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "success", Message: result.Status})
}
