package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	internal "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
	"github.com/devrahi999/ihntopup/internal/core/events"
	"github.com/devrahi999/ihntopup/internal/core/metrics"
	gatewayclient "github.com/devrahi999/ihntopup/internal/gateway"
)

const defaultSweepBatch = 100

// Service is the reconciliation engine: the only component that creates,
// commits or cancels payment intents. Webhook, redirect landing and the
// expiry sweep all converge on Reconcile, which makes the outcome durable
// exactly once regardless of call order or repetition.
type Service struct {
	ledger        Ledger
	gateway       gatewayclient.ClientAPI
	eventBus      *events.EventBus
	seen          *seenGuard
	commitRetries int
	successURL    string
	cancelURL     string
	webhookURL    string
	logger        *slog.Logger
}

type ServiceConfig struct {
	CommitRetries int
	SeenCacheSize int
	SuccessURL    string
	CancelURL     string
	WebhookURL    string
}

func NewService(ledger Ledger, gatewayClient gatewayclient.ClientAPI, eventBus *events.EventBus, cfg ServiceConfig, logger *slog.Logger) *Service {
	retries := cfg.CommitRetries
	if retries <= 0 {
		retries = 3
	}
	return &Service{
		ledger:        ledger,
		gateway:       gatewayClient,
		eventBus:      eventBus,
		seen:          newSeenGuard(cfg.SeenCacheSize),
		commitRetries: retries,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		webhookURL:    cfg.WebhookURL,
		logger:        logger,
	}
}

// Initiate creates a pending intent, obtains a hosted checkout URL and
// attaches the gateway-assigned reference. On any gateway failure the
// half-created intent is deleted rather than left dangling.
func (s *Service) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	if params.Amount <= 0 {
		return nil, internal.NewValidationError("amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if params.Kind != gateway.KindTopup && params.Kind != gateway.KindWalletAdd {
		return nil, internal.NewValidationError(fmt.Sprintf("unknown intent kind %q", params.Kind), internal.ErrCodeValidationFailed)
	}

	usr, err := s.ledger.GetUser(ctx, params.UserID)
	if err != nil {
		s.logger.Error("initiate: owner not resolvable", "error", err, "user_id", params.UserID)
		return nil, internal.ErrUserNotFound
	}

	fullname := params.Fullname
	if fullname == "" {
		fullname = usr.Name
	}
	email := params.Email
	if email == "" {
		email = usr.Email
	}

	intentID, metadata, err := s.createPendingIntent(ctx, params)
	if err != nil {
		s.logger.Error("initiate: failed to create pending intent", "error", err, "kind", params.Kind, "user_id", params.UserID)
		return nil, internal.NewInternalError("failed to create pending payment", err)
	}

	checkoutReq := &gateway.CheckoutRequest{
		Fullname:   fullname,
		Email:      email,
		Amount:     strconv.FormatFloat(params.Amount, 'f', 2, 64),
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
		WebhookURL: s.webhookURL,
		Metadata:   metadata,
	}

	resp, err := s.gateway.Checkout(ctx, checkoutReq)
	if err != nil {
		s.cleanupIntent(ctx, params.Kind, intentID)
		s.logger.Error("initiate: gateway unreachable", "error", err, "kind", params.Kind, "intent_id", intentID)
		return nil, internal.NewExternalError("Payment gateway unavailable", internal.ErrCodeGatewayUnavailable).WithCause(err)
	}

	if !bool(resp.Status) {
		s.cleanupIntent(ctx, params.Kind, intentID)
		s.logger.Error("initiate: gateway rejected checkout", "message", resp.Message, "kind", params.Kind, "intent_id", intentID)
		msg := resp.Message
		if msg == "" {
			msg = "Failed to initiate payment"
		}
		return nil, internal.NewValidationError(msg, internal.ErrCodeGatewayRejected)
	}

	ref, err := gatewayclient.TransactionRefFromURL(resp.PaymentURL)
	if err != nil {
		s.cleanupIntent(ctx, params.Kind, intentID)
		s.logger.Error("initiate: unusable payment url", "error", err, "payment_url", resp.PaymentURL)
		return nil, internal.NewExternalError("Payment gateway returned an unusable checkout URL", internal.ErrCodeGatewayRejected).WithCause(err)
	}

	if err := s.ledger.AttachGatewayRef(ctx, params.Kind, intentID, ref); err != nil {
		s.cleanupIntent(ctx, params.Kind, intentID)
		s.logger.Error("initiate: failed to attach gateway reference", "error", err, "intent_id", intentID, "ref", ref)
		return nil, internal.NewInternalError("failed to record payment reference", err)
	}

	metrics.CheckoutsInitiatedTotal.WithLabelValues(params.Kind).Inc()
	s.logger.Info("checkout initiated",
		"kind", params.Kind,
		"intent_id", intentID,
		"user_id", params.UserID,
		"amount", params.Amount,
		"gateway_txn_id", ref)

	return &InitiateResult{
		IntentID:     intentID,
		GatewayTxnID: ref,
		PaymentURL:   resp.PaymentURL,
	}, nil
}

func (s *Service) createPendingIntent(ctx context.Context, params InitiateParams) (int64, gateway.Metadata, error) {
	switch params.Kind {
	case gateway.KindWalletAdd:
		txn := &wallet.Transaction{
			UserID:      params.UserID,
			Type:        wallet.TypeCredit,
			Amount:      params.Amount,
			Description: "Wallet recharge - pending",
			Method:      "gateway",
			Status:      wallet.StatusPending,
		}
		if err := s.ledger.CreatePendingWalletCredit(ctx, txn); err != nil {
			return 0, gateway.Metadata{}, err
		}
		return txn.ID, gateway.Metadata{
			Type:       gateway.KindWalletAdd,
			LocalTxnID: txn.ID,
			Phone:      params.Phone,
		}, nil

	default: // gateway.KindTopup
		quantity := params.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		var cardName *string
		if params.CardName != "" {
			cardName = &params.CardName
		}
		o := &order.Order{
			UserID:    params.UserID,
			PackID:    params.PackID,
			CardID:    params.CardID,
			CardName:  cardName,
			PlayerUID: params.PlayerUID,
			ItemName:  params.ItemName,
			Diamonds:  params.Diamonds,
			Quantity:  quantity,
			Amount:    params.Amount,
			Status:    order.StatusPending,
		}
		if err := s.ledger.CreatePendingOrder(ctx, o); err != nil {
			return 0, gateway.Metadata{}, err
		}
		return o.ID, gateway.Metadata{
			Type:      gateway.KindTopup,
			OrderID:   o.ID,
			Phone:     params.Phone,
			PlayerUID: params.PlayerUID,
		}, nil
	}
}

func (s *Service) cleanupIntent(ctx context.Context, kind string, id int64) {
	if err := s.ledger.DeleteIntent(ctx, kind, id); err != nil {
		s.logger.Error("failed to clean up half-created intent", "error", err, "kind", kind, "intent_id", id)
	}
}

// Reconcile turns a gateway transaction reference into exactly one durable
// outcome. The claimed method from a webhook or redirect is cosmetic; the
// gateway's verify endpoint alone decides whether funds move.
func (s *Service) Reconcile(ctx context.Context, gatewayTxnRef, claimedMethod string) (*Result, error) {
	if gatewayTxnRef == "" {
		return nil, internal.NewValidationError("transaction reference is required", internal.ErrCodeValidationFailed)
	}

	// Fast path: a reference we already resolved ends in a terminal state.
	// The cache is only a hint; the ledger read below is what answers.
	if s.seen.Seen(gatewayTxnRef) {
		intent, err := s.ledger.IntentByGatewayRef(ctx, gatewayTxnRef)
		if err == nil && intent.IsTerminal() {
			return s.observe(s.terminalResult(intent)), nil
		}
	}

	verifyResp, err := s.gateway.Verify(ctx, gatewayTxnRef)
	if err != nil {
		s.logger.Error("reconcile: verify unavailable, intent stays pending",
			"error", err, "gateway_txn_id", gatewayTxnRef)
		return nil, internal.NewExternalError("Payment verification unavailable", internal.ErrCodeVerificationUnavailable).WithCause(err)
	}

	intent, err := s.ledger.IntentByGatewayRef(ctx, gatewayTxnRef)
	if err != nil {
		if errors.Is(err, ErrIntentNotFound) {
			// possible tampering or a provider bug, never guess by recency
			s.logger.Warn("reconcile: reference matches no intent",
				"gateway_txn_id", gatewayTxnRef, "verify_status", verifyResp.Status)
			return nil, internal.ErrUnknownTransaction
		}
		return nil, internal.NewInternalError("failed to resolve payment intent", err)
	}

	// Idempotence guard: terminal intents never move again, whatever the
	// verify outcome claims now.
	if intent.IsTerminal() {
		s.seen.Mark(gatewayTxnRef)
		return s.observe(s.terminalResult(intent)), nil
	}

	if !verifyResp.Completed() {
		cancelRes, cerr := s.CancelAll(ctx, intent.UserID, gatewayTxnRef, verifyResp.Status)
		if cerr != nil {
			return nil, cerr
		}
		s.logger.Info("reconcile: non-completed verify, intents cancelled",
			"gateway_txn_id", gatewayTxnRef,
			"verify_status", verifyResp.Status,
			"cancelled", cancelRes.Cancelled)
		return s.observe(&Result{
			Status:   ResultCancelled,
			Kind:     intent.Kind,
			IntentID: intent.ID,
			Detail:   fmt.Sprintf("gateway reported %s", verifyResp.Status),
		}), nil
	}

	method := claimedMethod
	if method == "" {
		method = verifyResp.PaymentMethod
	}
	if method == "" {
		method = "instant"
	}

	committed, err := s.commitWithRetries(ctx, intent, method, verifyResp.TrxID, float64(verifyResp.Amount))
	if err != nil {
		// intent stays pending so an operator or the sweep can re-run;
		// never report success without the commit having landed
		s.logger.Error("reconcile: commit failed after retries",
			"error", err, "kind", intent.Kind, "intent_id", intent.ID, "gateway_txn_id", gatewayTxnRef)
		return nil, internal.NewInternalError("failed to commit verified payment", err)
	}

	if !committed {
		// lost the race: another caller committed or cancelled first
		current, rerr := s.ledger.IntentByGatewayRef(ctx, gatewayTxnRef)
		if rerr != nil {
			return nil, internal.NewInternalError("failed to re-read payment intent", rerr)
		}
		s.seen.Mark(gatewayTxnRef)
		return s.observe(s.terminalResult(current)), nil
	}

	s.seen.Mark(gatewayTxnRef)
	s.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(
		intent.Kind, intent.ID, intent.UserID, gatewayTxnRef, verifyResp.TrxID, intent.Amount, method))

	s.logger.Info("payment reconciled",
		"kind", intent.Kind,
		"intent_id", intent.ID,
		"user_id", intent.UserID,
		"amount", intent.Amount,
		"gateway_txn_id", gatewayTxnRef,
		"provider_trx_id", verifyResp.TrxID,
		"payment_method", method)

	return s.observe(&Result{
		Status:        ResultCompleted,
		Kind:          intent.Kind,
		IntentID:      intent.ID,
		Amount:        intent.Amount,
		PaymentMethod: method,
		ProviderTrxID: verifyResp.TrxID,
	}), nil
}

// observe records the reconciliation outcome before it is returned.
func (s *Service) observe(result *Result) *Result {
	metrics.ReconcileResultsTotal.WithLabelValues(result.Status).Inc()
	return result
}

func (s *Service) commitWithRetries(ctx context.Context, intent *Intent, method, providerTrxID string, verifiedAmount float64) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= s.commitRetries; attempt++ {
		var committed bool
		var err error
		switch intent.Kind {
		case gateway.KindWalletAdd:
			committed, err = s.ledger.CommitWalletCredit(ctx, intent.ID, method, providerTrxID)
		default:
			committed, err = s.ledger.CommitOrder(ctx, intent.ID, method, providerTrxID, verifiedAmount)
		}
		if err == nil {
			return committed, nil
		}
		lastErr = err
		s.logger.Warn("commit attempt failed",
			"error", err, "attempt", attempt, "kind", intent.Kind, "intent_id", intent.ID)
	}
	return false, lastErr
}

func (s *Service) terminalResult(intent *Intent) *Result {
	status := ResultAlreadyProcessed
	if intent.Status == order.StatusCancelled {
		status = ResultAlreadyCancelled
	}
	return &Result{
		Status:   status,
		Kind:     intent.Kind,
		IntentID: intent.ID,
		Amount:   intent.Amount,
	}
}

// CancelAll resolves every pending intent the user owns after a negative
// outcome: first the intent carrying the triggering reference, then a sweep
// of all the user's other pending intents. The broad sweep is deliberate: a
// failed checkout can leave more than one stale intent behind, and nothing
// pending may survive a negative outcome.
func (s *Service) CancelAll(ctx context.Context, userID int64, gatewayTxnRef, reasonStatus string) (*CancelResult, error) {
	if reasonStatus == "" {
		reasonStatus = "cancelled"
	}

	var reason string
	if gatewayTxnRef != "" {
		reason = fmt.Sprintf("Payment %s - Transaction: %s", reasonStatus, gatewayTxnRef)
	} else {
		reason = fmt.Sprintf("Payment %s", reasonStatus)
	}

	total := 0

	if gatewayTxnRef != "" {
		n, err := s.ledger.CancelByGatewayRef(ctx, gatewayTxnRef, reason)
		if err != nil {
			return nil, internal.NewInternalError("failed to cancel payment intent", err)
		}
		total += n
		s.seen.Mark(gatewayTxnRef)
	}

	n, err := s.ledger.CancelPendingByUser(ctx, userID, reason)
	if err != nil {
		return nil, internal.NewInternalError("failed to cancel pending intents", err)
	}
	total += n

	if total > 0 {
		s.eventBus.Publish(ctx, events.NewPaymentCancelledEvent(userID, gatewayTxnRef, reason, total))
	}

	s.logger.Info("cancellation sweep finished",
		"user_id", userID,
		"gateway_txn_id", gatewayTxnRef,
		"reason_status", reasonStatus,
		"cancelled", total)

	return &CancelResult{Cancelled: total, Reason: reason}, nil
}

// SweepStale resolves intents stuck pending longer than olderThan: each one
// with a gateway reference goes through the normal reconcile path (so a
// payment that actually completed is committed, not thrown away), and intents
// that never got a reference are cancelled outright.
func (s *Service) SweepStale(ctx context.Context, olderThan time.Duration) (*SweepResult, error) {
	cutoff := time.Now().Add(-olderThan)

	intents, err := s.ledger.ListStalePending(ctx, cutoff, defaultSweepBatch)
	if err != nil {
		return nil, internal.NewInternalError("failed to list stale intents", err)
	}

	res := &SweepResult{Examined: len(intents)}

	for _, intent := range intents {
		if intent.GatewayTxnID == nil || *intent.GatewayTxnID == "" {
			cancelled, cerr := s.ledger.CancelIntent(ctx, intent.Kind, intent.ID, "Payment expired - no gateway reference")
			if cerr != nil {
				s.logger.Error("sweep: failed to cancel unreferenced intent",
					"error", cerr, "kind", intent.Kind, "intent_id", intent.ID)
				continue
			}
			if cancelled {
				res.Cancelled++
			}
			continue
		}

		outcome, rerr := s.Reconcile(ctx, *intent.GatewayTxnID, "")
		if rerr != nil {
			// VerificationUnavailable and friends: leave pending for the
			// next sweep pass
			s.logger.Warn("sweep: reconcile failed, intent left pending",
				"error", rerr, "kind", intent.Kind, "intent_id", intent.ID)
			continue
		}

		switch outcome.Status {
		case ResultCompleted:
			res.Committed++
		case ResultCancelled:
			res.Cancelled++
		}
	}

	s.logger.Info("stale intent sweep finished",
		"examined", res.Examined,
		"committed", res.Committed,
		"cancelled", res.Cancelled)

	return res, nil
}
