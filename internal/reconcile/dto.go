package reconcile

// VerifyRequest is posted by the success-redirect landing page with the
// gateway reference it received in the query string.
type VerifyRequest struct {
	TransactionID string `json:"transaction_id"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// CancelRequest is posted by the cancel-redirect landing page. Status carries
// the gateway's claimed outcome ("cancelled", "failed") and is used only for
// the cancellation reason text.
type CancelRequest struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status,omitempty"`
}

// WebhookRequest is the gateway's server-to-server notification. Providers
// are inconsistent about the field name, so both spellings are accepted.
type WebhookRequest struct {
	TransactionID string `json:"transaction_id"`
	TrxID         string `json:"trx_id"`
	Status        string `json:"status,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

func (r *WebhookRequest) Ref() string {
	if r.TransactionID != "" {
		return r.TransactionID
	}
	return r.TrxID
}
