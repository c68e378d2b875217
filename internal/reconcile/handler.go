package reconcile

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/auth"
	"github.com/devrahi999/ihntopup/internal/transport"
)

// Handler serves the browser-facing reconciliation endpoints: the verify
// call made by the success-redirect page and the cancel call made by the
// cancel-redirect page. Both drive the same engine the webhook uses.
type Handler struct {
	transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: *transport.NewBaseHandler(logger),
		Service:     service,
		Logger:      logger,
	}
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("VerifyPayment: invalid request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if req.TransactionID == "" {
		h.HandleError(w, errors.NewValidationError("transaction_id is required", errors.ErrCodeValidationFailed))
		return
	}

	result, err := h.Service.Reconcile(r.Context(), req.TransactionID, req.PaymentMethod)
	if err != nil {
		h.Logger.Error("VerifyPayment: reconciliation failed",
			"transaction_id", req.TransactionID,
			"error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CancelPayment: invalid request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	status := req.Status
	if status == "" {
		status = "cancelled"
	}

	result, err := h.Service.CancelAll(r.Context(), user.ID, req.TransactionID, status)
	if err != nil {
		h.Logger.Error("CancelPayment: service error",
			"user_id", user.ID,
			"transaction_id", req.TransactionID,
			"error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
