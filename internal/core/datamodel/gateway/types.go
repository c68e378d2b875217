package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Intent kinds carried in checkout metadata. The gateway echoes the metadata
// back on verify, which is how a webhook or redirect resolves to a local row
// without a second lookup.
const (
	KindTopup     = "topup"
	KindWalletAdd = "wallet_add"
)

// Canonical terminal statuses the verify endpoint reports. Only
// StatusCompleted ever justifies a commit.
const (
	StatusCompleted = "COMPLETED"
	StatusPending   = "PENDING"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
	StatusError     = "ERROR"
)

// Metadata round-trips through the gateway untouched. OrderID is set for
// topup intents, LocalTxnID for wallet credits.
type Metadata struct {
	Type       string `json:"type"`
	OrderID    int64  `json:"order_id,omitempty"`
	LocalTxnID int64  `json:"local_txn_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PlayerUID  string `json:"player_uid,omitempty"`
}

// LocalID returns whichever local identifier the metadata carries.
func (m Metadata) LocalID() int64 {
	if m.OrderID != 0 {
		return m.OrderID
	}
	return m.LocalTxnID
}

type CheckoutRequest struct {
	Fullname   string   `json:"fullname"`
	Email      string   `json:"email"`
	Amount     string   `json:"amount"`
	SuccessURL string   `json:"success_url"`
	CancelURL  string   `json:"cancel_url"`
	WebhookURL string   `json:"webhook_url"`
	Metadata   Metadata `json:"metadata"`
}

// LooseBool tolerates the gateway reporting checkout acceptance as 1, "1" or
// true depending on the endpoint.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "1", `"1"`, "true", `"true"`:
		*b = true
	default:
		*b = false
	}
	return nil
}

type CheckoutResponse struct {
	Status     LooseBool `json:"status"`
	Message    string    `json:"message"`
	PaymentURL string    `json:"payment_url"`
}

// LooseFloat tolerates amounts arriving as either a JSON number or a string.
type LooseFloat float64

func (f *LooseFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = LooseFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = LooseFloat(v)
	return nil
}

type VerifyRequest struct {
	TransactionID string `json:"transaction_id"`
}

type VerifyResponse struct {
	Status        string     `json:"status"`
	Amount        LooseFloat `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	TrxID         string     `json:"trx_id"`
	Metadata      Metadata   `json:"metadata"`
	Message       string     `json:"message"`
}

func (v *VerifyResponse) Completed() bool {
	return v.Status == StatusCompleted
}
