package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	internal "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/core/metrics"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
	"github.com/devrahi999/ihntopup/internal/core/events"
	"github.com/devrahi999/ihntopup/internal/reconcile"
)

func TestReconcileService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reconcile Service Suite")
}

// Mock ledger backed by in-memory intent rows
type mockIntent struct {
	reconcile.Intent
	method        string
	providerTrxID string
	reason        string
}

type mockLedger struct {
	mu      sync.Mutex
	users   map[int64]*user.User
	intents map[string]*mockIntent // key kind:id
	nextID  int64

	createError error
	attachError error
	commitError error
	lookupError error

	// afterLookup runs after a successful IntentByGatewayRef, outside the
	// lock, so concurrent callers can be held at a barrier
	afterLookup func()

	commitCalls int
	commitWins  int
	deleted     []string
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		users:   map[int64]*user.User{1: {ID: 1, Name: "Rahi", Email: "rahi@mail.com", WalletBalance: 50}},
		intents: make(map[string]*mockIntent),
		nextID:  1,
	}
}

func key(kind string, id int64) string { return fmt.Sprintf("%s:%d", kind, id) }

func (m *mockLedger) addPending(kind string, userID int64, amount float64, ref string) *mockIntent {
	id := m.nextID
	m.nextID++
	in := &mockIntent{Intent: reconcile.Intent{
		Kind:      kind,
		ID:        id,
		UserID:    userID,
		Amount:    amount,
		Status:    order.StatusPending,
		CreatedAt: time.Now(),
	}}
	if ref != "" {
		r := ref
		in.GatewayTxnID = &r
	}
	m.intents[key(kind, id)] = in
	return in
}

func (m *mockLedger) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockLedger) CreatePendingOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	in := m.addPending(gateway.KindTopup, o.UserID, o.Amount, "")
	o.ID = in.ID
	return nil
}

func (m *mockLedger) CreatePendingWalletCredit(ctx context.Context, t *wallet.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	in := m.addPending(gateway.KindWalletAdd, t.UserID, t.Amount, "")
	t.ID = in.ID
	return nil
}

func (m *mockLedger) AttachGatewayRef(ctx context.Context, kind string, id int64, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attachError != nil {
		return m.attachError
	}
	in, ok := m.intents[key(kind, id)]
	if !ok {
		return errors.New("intent not found")
	}
	if in.GatewayTxnID != nil {
		return errors.New("reference already attached")
	}
	r := ref
	in.GatewayTxnID = &r
	return nil
}

func (m *mockLedger) DeleteIntent(ctx context.Context, kind string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(kind, id)
	if _, ok := m.intents[k]; !ok {
		return errors.New("intent not found")
	}
	delete(m.intents, k)
	m.deleted = append(m.deleted, k)
	return nil
}

func (m *mockLedger) IntentByGatewayRef(ctx context.Context, ref string) (*reconcile.Intent, error) {
	m.mu.Lock()
	if m.lookupError != nil {
		m.mu.Unlock()
		return nil, m.lookupError
	}
	for _, in := range m.intents {
		if in.GatewayTxnID != nil && *in.GatewayTxnID == ref {
			cp := in.Intent
			m.mu.Unlock()
			if m.afterLookup != nil {
				m.afterLookup()
			}
			return &cp, nil
		}
	}
	m.mu.Unlock()
	return nil, reconcile.ErrIntentNotFound
}

func (m *mockLedger) CommitOrder(ctx context.Context, orderID int64, method, providerTrxID string, amount float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitCalls++
	if m.commitError != nil {
		return false, m.commitError
	}
	in, ok := m.intents[key(gateway.KindTopup, orderID)]
	if !ok {
		return false, errors.New("order not found")
	}
	if in.Status != order.StatusPending {
		return false, nil
	}
	in.Status = order.StatusCompleted
	in.method = method
	in.providerTrxID = providerTrxID
	if amount > 0 {
		in.Amount = amount
	}
	m.commitWins++
	return true, nil
}

func (m *mockLedger) CommitWalletCredit(ctx context.Context, txnID int64, method, providerTrxID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitCalls++
	if m.commitError != nil {
		return false, m.commitError
	}
	in, ok := m.intents[key(gateway.KindWalletAdd, txnID)]
	if !ok {
		return false, errors.New("transaction not found")
	}
	if in.Status != wallet.StatusPending {
		return false, nil
	}
	in.Status = wallet.StatusCompleted
	in.method = method
	in.providerTrxID = providerTrxID
	if u, ok := m.users[in.UserID]; ok {
		u.WalletBalance += in.Amount
	}
	m.commitWins++
	return true, nil
}

func (m *mockLedger) CancelByGatewayRef(ctx context.Context, ref, reason string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range m.intents {
		if in.GatewayTxnID != nil && *in.GatewayTxnID == ref && in.Status == order.StatusPending {
			in.Status = order.StatusCancelled
			in.reason = reason
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockLedger) CancelPendingByUser(ctx context.Context, userID int64, reason string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, in := range m.intents {
		if in.UserID == userID && in.Status == order.StatusPending {
			in.Status = order.StatusCancelled
			in.reason = reason
			n++
		}
	}
	return n, nil
}

func (m *mockLedger) CancelIntent(ctx context.Context, kind string, id int64, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[key(kind, id)]
	if !ok || in.Status != order.StatusPending {
		return false, nil
	}
	in.Status = order.StatusCancelled
	in.reason = reason
	return true, nil
}

func (m *mockLedger) ListStalePending(ctx context.Context, before time.Time, limit int) ([]reconcile.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reconcile.Intent
	for _, in := range m.intents {
		if in.Status == order.StatusPending && in.CreatedAt.Before(before) {
			out = append(out, in.Intent)
		}
	}
	return out, nil
}

// Mock gateway client
type mockGateway struct {
	mu            sync.Mutex
	checkoutResp  *gateway.CheckoutResponse
	checkoutError error
	verifyResp    *gateway.VerifyResponse
	verifyError   error
	verifyCalls   int
}

func (m *mockGateway) Checkout(ctx context.Context, req *gateway.CheckoutRequest) (*gateway.CheckoutResponse, error) {
	if m.checkoutError != nil {
		return nil, m.checkoutError
	}
	return m.checkoutResp, nil
}

func (m *mockGateway) Verify(ctx context.Context, transactionRef string) (*gateway.VerifyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	if m.verifyError != nil {
		return nil, m.verifyError
	}
	return m.verifyResp, nil
}

func appErrCode(err error) internal.ErrorCode {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

var _ = Describe("Reconcile Service", func() {
	var (
		ledger  *mockLedger
		gw      *mockGateway
		service *reconcile.Service
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		ledger = newMockLedger()
		gw = &mockGateway{
			checkoutResp: &gateway.CheckoutResponse{
				Status:     true,
				PaymentURL: "https://pay.example.com/payment/TXN123",
			},
			verifyResp: &gateway.VerifyResponse{
				Status:        gateway.StatusCompleted,
				Amount:        100,
				PaymentMethod: "bkash",
				TrxID:         "PRV789",
			},
		}
		service = reconcile.NewService(ledger, gw, events.NewEventBus(testLogger), reconcile.ServiceConfig{
			CommitRetries: 3,
			SuccessURL:    "https://shop.example.com/orders/success",
			CancelURL:     "https://shop.example.com/orders/cancel",
			WebhookURL:    "https://shop.example.com/api/v1/payment/webhook",
		}, testLogger)
	})

	Describe("Initiate", func() {
		It("creates a pending wallet credit and attaches the gateway reference", func() {
			result, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 1,
				Amount: 100,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.GatewayTxnID).To(Equal("TXN123"))
			Expect(result.PaymentURL).To(Equal("https://pay.example.com/payment/TXN123"))

			intent, err := ledger.IntentByGatewayRef(context.Background(), "TXN123")
			Expect(err).ToNot(HaveOccurred())
			Expect(intent.Kind).To(Equal(gateway.KindWalletAdd))
			Expect(intent.Status).To(Equal(wallet.StatusPending))
		})

		It("creates a pending order for topup intents", func() {
			packID := int64(7)
			result, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:      gateway.KindTopup,
				UserID:    1,
				Amount:    240,
				PackID:    &packID,
				PlayerUID: "123456789",
				ItemName:  "310 Diamonds",
				Diamonds:  310,
			})

			Expect(err).ToNot(HaveOccurred())

			intent, err := ledger.IntentByGatewayRef(context.Background(), result.GatewayTxnID)
			Expect(err).ToNot(HaveOccurred())
			Expect(intent.Kind).To(Equal(gateway.KindTopup))
			Expect(intent.Amount).To(Equal(240.0))
		})

		It("rejects a non-positive amount", func() {
			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 1,
				Amount: 0,
			})

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeInvalidAmount))
			Expect(ledger.intents).To(BeEmpty())
		})

		It("rejects an unknown intent kind", func() {
			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   "subscription",
				UserID: 1,
				Amount: 100,
			})

			Expect(err).To(HaveOccurred())
			Expect(ledger.intents).To(BeEmpty())
		})

		It("deletes the half-created intent when the gateway is unreachable", func() {
			gw.checkoutError = errors.New("connection refused")

			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 1,
				Amount: 100,
			})

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeGatewayUnavailable))
			Expect(ledger.intents).To(BeEmpty())
			Expect(ledger.deleted).To(HaveLen(1))
		})

		It("deletes the intent when the gateway rejects the checkout", func() {
			gw.checkoutResp = &gateway.CheckoutResponse{Status: false, Message: "invalid api key"}

			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 1,
				Amount: 100,
			})

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeGatewayRejected))
			Expect(ledger.intents).To(BeEmpty())
		})

		It("deletes the intent when the checkout URL carries no reference", func() {
			gw.checkoutResp = &gateway.CheckoutResponse{Status: true, PaymentURL: "https://pay.example.com"}

			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 1,
				Amount: 100,
			})

			Expect(err).To(HaveOccurred())
			Expect(ledger.intents).To(BeEmpty())
		})

		It("fails when the owner does not exist", func() {
			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 99,
				Amount: 100,
			})

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeUserNotFound))
		})
	})

	Describe("Reconcile", func() {
		It("commits a verified wallet credit and credits the balance", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			result, err := service.Reconcile(context.Background(), "TXN123", "bkash")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(reconcile.ResultCompleted))
			Expect(result.Kind).To(Equal(gateway.KindWalletAdd))
			Expect(result.PaymentMethod).To(Equal("bkash"))
			Expect(result.ProviderTrxID).To(Equal("PRV789"))
			Expect(ledger.users[1].WalletBalance).To(Equal(150.0))
		})

		It("commits a verified topup order", func() {
			ledger.addPending(gateway.KindTopup, 1, 240, "TXN123")
			gw.verifyResp.Amount = 240

			result, err := service.Reconcile(context.Background(), "TXN123", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(reconcile.ResultCompleted))
			Expect(result.Kind).To(Equal(gateway.KindTopup))
		})

		It("falls back to the verify payment method when none is claimed", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			result, err := service.Reconcile(context.Background(), "TXN123", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.PaymentMethod).To(Equal("bkash"))
		})

		It("reports already-processed on a duplicate notification", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			first, err := service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())
			Expect(first.Status).To(Equal(reconcile.ResultCompleted))

			second, err := service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())
			Expect(second.Status).To(Equal(reconcile.ResultAlreadyProcessed))

			// balance credited exactly once
			Expect(ledger.users[1].WalletBalance).To(Equal(150.0))
		})

		It("is idempotent across webhook, redirect and poll arrival orders", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			webhook, err := service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())
			redirect, err := service.Reconcile(context.Background(), "TXN123", "")
			Expect(err).ToNot(HaveOccurred())
			poll, err := service.Reconcile(context.Background(), "TXN123", "")
			Expect(err).ToNot(HaveOccurred())

			Expect(webhook.Status).To(Equal(reconcile.ResultCompleted))
			Expect(redirect.Status).To(Equal(reconcile.ResultAlreadyProcessed))
			Expect(poll.Status).To(Equal(reconcile.ResultAlreadyProcessed))
			Expect(ledger.users[1].WalletBalance).To(Equal(150.0))
		})

		It("admits exactly one commit when two callers race the same pending intent", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			// Hold each caller after its ledger read until both have
			// observed the intent pending, so the conditional update is
			// the only thing deciding the winner.
			var lookups int32
			bothRead := make(chan struct{})
			ledger.afterLookup = func() {
				if atomic.AddInt32(&lookups, 1) == 2 {
					close(bothRead)
				}
				<-bothRead
			}

			var wg sync.WaitGroup
			results := make([]*reconcile.Result, 2)
			errs := make([]error, 2)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = service.Reconcile(context.Background(), "TXN123", "bkash")
				}(i)
			}
			wg.Wait()
			ledger.afterLookup = nil

			Expect(errs[0]).ToNot(HaveOccurred())
			Expect(errs[1]).ToNot(HaveOccurred())
			Expect([]string{results[0].Status, results[1].Status}).To(
				ConsistOf(reconcile.ResultCompleted, reconcile.ResultAlreadyProcessed))
			Expect(ledger.commitWins).To(Equal(1))
			Expect(ledger.users[1].WalletBalance).To(Equal(150.0))
		})

		It("refuses to revive a cancelled intent even if verify now claims completion", func() {
			in := ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			in.Status = wallet.StatusCancelled

			result, err := service.Reconcile(context.Background(), "TXN123", "bkash")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(reconcile.ResultAlreadyCancelled))
			Expect(ledger.users[1].WalletBalance).To(Equal(50.0))
		})

		It("cancels all the user's pending intents on a non-completed verify", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			ledger.addPending(gateway.KindTopup, 1, 240, "TXN999")
			gw.verifyResp = &gateway.VerifyResponse{Status: gateway.StatusFailed}

			result, err := service.Reconcile(context.Background(), "TXN123", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(reconcile.ResultCancelled))
			for _, in := range ledger.intents {
				Expect(in.Status).To(Equal(wallet.StatusCancelled))
			}
		})

		It("leaves the intent pending when verification is unavailable", func() {
			in := ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			gw.verifyError = errors.New("timeout")

			_, err := service.Reconcile(context.Background(), "TXN123", "")

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeVerificationUnavailable))
			Expect(in.Status).To(Equal(wallet.StatusPending))
		})

		It("rejects a reference that matches no intent", func() {
			_, err := service.Reconcile(context.Background(), "UNKNOWN", "")

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeUnknownTransaction))
		})

		It("rejects an empty reference", func() {
			_, err := service.Reconcile(context.Background(), "", "")

			Expect(err).To(HaveOccurred())
			Expect(appErrCode(err)).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("leaves the intent pending when the commit keeps failing", func() {
			in := ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			ledger.commitError = errors.New("deadlock")

			_, err := service.Reconcile(context.Background(), "TXN123", "")

			Expect(err).To(HaveOccurred())
			Expect(in.Status).To(Equal(wallet.StatusPending))
			Expect(ledger.commitCalls).To(Equal(3))
		})

		It("skips the verify round-trip for references already seen terminal", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			_, err := service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())
			verifiesAfterFirst := gw.verifyCalls

			result, err := service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(reconcile.ResultAlreadyProcessed))
			Expect(gw.verifyCalls).To(Equal(verifiesAfterFirst))
		})

		It("counts initiated checkouts and reconciliation outcomes", func() {
			checkoutsBefore := testutil.ToFloat64(metrics.CheckoutsInitiatedTotal.WithLabelValues(gateway.KindWalletAdd))
			completedBefore := testutil.ToFloat64(metrics.ReconcileResultsTotal.WithLabelValues(reconcile.ResultCompleted))
			duplicatesBefore := testutil.ToFloat64(metrics.ReconcileResultsTotal.WithLabelValues(reconcile.ResultAlreadyProcessed))

			_, err := service.Initiate(context.Background(), reconcile.InitiateParams{
				Kind:   gateway.KindWalletAdd,
				UserID: 1,
				Amount: 100,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(testutil.ToFloat64(metrics.CheckoutsInitiatedTotal.WithLabelValues(gateway.KindWalletAdd))).
				To(Equal(checkoutsBefore + 1))

			_, err = service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Reconcile(context.Background(), "TXN123", "bkash")
			Expect(err).ToNot(HaveOccurred())

			Expect(testutil.ToFloat64(metrics.ReconcileResultsTotal.WithLabelValues(reconcile.ResultCompleted))).
				To(Equal(completedBefore + 1))
			Expect(testutil.ToFloat64(metrics.ReconcileResultsTotal.WithLabelValues(reconcile.ResultAlreadyProcessed))).
				To(Equal(duplicatesBefore + 1))
		})
	})

	Describe("CancelAll", func() {
		It("cancels the referenced intent and every other pending intent of the user", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			ledger.addPending(gateway.KindTopup, 1, 240, "")

			result, err := service.CancelAll(context.Background(), 1, "TXN123", "failed")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Cancelled).To(Equal(2))
			Expect(result.Reason).To(ContainSubstring("failed"))
			Expect(result.Reason).To(ContainSubstring("TXN123"))
		})

		It("leaves terminal intents untouched", func() {
			committed := ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			committed.Status = wallet.StatusCompleted

			result, err := service.CancelAll(context.Background(), 1, "TXN123", "cancelled")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Cancelled).To(Equal(0))
			Expect(committed.Status).To(Equal(wallet.StatusCompleted))
		})

		It("defaults the reason status when the caller sends none", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			result, err := service.CancelAll(context.Background(), 1, "TXN123", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Reason).To(ContainSubstring("cancelled"))
		})
	})

	Describe("SweepStale", func() {
		stale := func(in *mockIntent) {
			in.CreatedAt = time.Now().Add(-2 * time.Hour)
		}

		It("commits stale intents the gateway reports completed", func() {
			in := ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			stale(in)

			result, err := service.SweepStale(context.Background(), time.Hour)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Examined).To(Equal(1))
			Expect(result.Committed).To(Equal(1))
			Expect(ledger.users[1].WalletBalance).To(Equal(150.0))
		})

		It("cancels stale intents that never got a gateway reference", func() {
			in := ledger.addPending(gateway.KindTopup, 1, 240, "")
			stale(in)

			result, err := service.SweepStale(context.Background(), time.Hour)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Cancelled).To(Equal(1))
			Expect(in.Status).To(Equal(order.StatusCancelled))
		})

		It("cancels stale intents the gateway reports failed", func() {
			in := ledger.addPending(gateway.KindTopup, 1, 240, "TXN123")
			stale(in)
			gw.verifyResp = &gateway.VerifyResponse{Status: gateway.StatusFailed}

			result, err := service.SweepStale(context.Background(), time.Hour)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Cancelled).To(Equal(1))
		})

		It("leaves intents pending when verification is unavailable", func() {
			in := ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")
			stale(in)
			gw.verifyError = errors.New("timeout")

			result, err := service.SweepStale(context.Background(), time.Hour)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Examined).To(Equal(1))
			Expect(result.Committed).To(Equal(0))
			Expect(in.Status).To(Equal(wallet.StatusPending))
		})

		It("ignores fresh pending intents", func() {
			ledger.addPending(gateway.KindWalletAdd, 1, 100, "TXN123")

			result, err := service.SweepStale(context.Background(), time.Hour)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Examined).To(Equal(0))
		})
	})
})
