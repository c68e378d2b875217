package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gatewaytypes "github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
)

const (
	checkoutPath = "/api/payment/checkout"
	verifyPath   = "/api/payment/verify-payment"
)

// ClientAPI is what the reconciliation engine consumes. Checkout obtains a
// hosted payment URL; Verify is the authoritative status source.
type ClientAPI interface {
	Checkout(ctx context.Context, req *gatewaytypes.CheckoutRequest) (*gatewaytypes.CheckoutResponse, error)
	Verify(ctx context.Context, transactionRef string) (*gatewaytypes.VerifyResponse, error)
}

type Config struct {
	BaseURL         string
	APIKey          string
	ClientHost      string
	CheckoutTimeout time.Duration
	VerifyTimeout   time.Duration
}

type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	clientHost      string
	checkoutTimeout time.Duration
	verifyTimeout   time.Duration
	logger          *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	checkoutTimeout := cfg.CheckoutTimeout
	if checkoutTimeout <= 0 {
		checkoutTimeout = 15 * time.Second
	}
	verifyTimeout := cfg.VerifyTimeout
	if verifyTimeout <= 0 {
		verifyTimeout = 10 * time.Second
	}

	return &Client{
		httpClient:      &http.Client{},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		clientHost:      cfg.ClientHost,
		checkoutTimeout: checkoutTimeout,
		verifyTimeout:   verifyTimeout,
		logger:          logger,
	}
}

// Checkout asks the gateway for a hosted payment URL. A non-2xx response or a
// rejected status is returned as-is so the caller can distinguish
// gateway-unreachable from gateway-rejected.
func (c *Client) Checkout(ctx context.Context, req *gatewaytypes.CheckoutRequest) (*gatewaytypes.CheckoutResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.checkoutTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+checkoutPath, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)
	httpReq.Header.Set("X-CLIENT", c.clientHost)

	c.logger.Info("sending checkout request",
		"amount", req.Amount,
		"kind", req.Metadata.Type,
		"local_id", req.Metadata.LocalID())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("checkout request failed", "error", err)
		return nil, fmt.Errorf("checkout HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read checkout response: %w", err)
	}

	var checkoutResp gatewaytypes.CheckoutResponse
	if err := json.Unmarshal(respBody, &checkoutResp); err != nil {
		c.logger.Error("failed to unmarshal checkout response", "error", err, "response", string(respBody))
		return nil, fmt.Errorf("unmarshal checkout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("checkout API returned error",
			"status", resp.StatusCode,
			"message", checkoutResp.Message)
		checkoutResp.Status = false
		return &checkoutResp, nil
	}

	c.logger.Info("checkout response received",
		"accepted", bool(checkoutResp.Status),
		"payment_url", checkoutResp.PaymentURL)

	return &checkoutResp, nil
}

// Verify fetches the authoritative transaction state by reference. Claimed
// statuses from webhooks and redirects are never trusted; this call is.
func (c *Client) Verify(ctx context.Context, transactionRef string) (*gatewaytypes.VerifyResponse, error) {
	reqBody, err := json.Marshal(gatewaytypes.VerifyRequest{TransactionID: transactionRef})
	if err != nil {
		return nil, fmt.Errorf("marshal verify request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("verify request failed", "error", err, "transaction_ref", transactionRef)
		return nil, fmt.Errorf("verify HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	var verifyResp gatewaytypes.VerifyResponse
	if err := json.Unmarshal(respBody, &verifyResp); err != nil {
		c.logger.Error("failed to unmarshal verify response", "error", err, "response", string(respBody))
		return nil, fmt.Errorf("unmarshal verify response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the gateway answers 4xx with a status payload for unknown refs;
		// surface the payload, not a transport error
		if verifyResp.Status == "" {
			verifyResp.Status = gatewaytypes.StatusError
		}
	}

	c.logger.Info("verify response received",
		"transaction_ref", transactionRef,
		"status", verifyResp.Status,
		"amount", float64(verifyResp.Amount),
		"trx_id", verifyResp.TrxID)

	return &verifyResp, nil
}

// TransactionRefFromURL extracts the gateway-assigned reference from a hosted
// payment URL. The gateway's URL scheme keeps it as the last path segment.
func TransactionRefFromURL(paymentURL string) (string, error) {
	u, err := url.Parse(paymentURL)
	if err != nil {
		return "", fmt.Errorf("parse payment url: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	ref := segments[len(segments)-1]
	if ref == "" {
		return "", fmt.Errorf("payment url %q has no transaction reference", paymentURL)
	}
	return ref, nil
}
