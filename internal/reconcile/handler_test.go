package reconcile_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/auth"
	"github.com/devrahi999/ihntopup/internal/reconcile"
	"github.com/devrahi999/ihntopup/internal/transport"
)

// stubEngine scripts engine outcomes for handler tests
type stubEngine struct {
	result       *reconcile.Result
	reconcileErr error
	cancelResult *reconcile.CancelResult
	cancelErr    error

	lastRef    string
	lastMethod string
	lastStatus string
	lastUserID int64
}

func (s *stubEngine) Initiate(ctx context.Context, params reconcile.InitiateParams) (*reconcile.InitiateResult, error) {
	return nil, nil
}

func (s *stubEngine) Reconcile(ctx context.Context, ref, method string) (*reconcile.Result, error) {
	s.lastRef = ref
	s.lastMethod = method
	if s.reconcileErr != nil {
		return nil, s.reconcileErr
	}
	return s.result, nil
}

func (s *stubEngine) CancelAll(ctx context.Context, userID int64, ref, status string) (*reconcile.CancelResult, error) {
	s.lastUserID = userID
	s.lastRef = ref
	s.lastStatus = status
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return s.cancelResult, nil
}

func (s *stubEngine) SweepStale(ctx context.Context, olderThan time.Duration) (*reconcile.SweepResult, error) {
	return nil, nil
}

var _ = Describe("Reconcile Handlers", func() {
	var (
		engine *stubEngine
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		engine = &stubEngine{
			result: &reconcile.Result{Status: reconcile.ResultCompleted, Kind: "topup", IntentID: 42},
			cancelResult: &reconcile.CancelResult{
				Cancelled: 1,
				Reason:    "Payment cancelled - Transaction: TXN123",
			},
		}
	})

	Describe("VerifyPayment", func() {
		var handler *reconcile.Handler

		BeforeEach(func() {
			handler = reconcile.NewHandler(engine, testLogger)
		})

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/verify", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			handler.VerifyPayment(rec, req)
			return rec
		}

		It("reconciles the posted reference", func() {
			rec := post(`{"transaction_id": "TXN123", "payment_method": "bkash"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(engine.lastRef).To(Equal("TXN123"))
			Expect(engine.lastMethod).To(Equal("bkash"))

			var result reconcile.Result
			Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Status).To(Equal(reconcile.ResultCompleted))
		})

		It("rejects a missing transaction_id", func() {
			rec := post(`{"payment_method": "bkash"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed body", func() {
			rec := post(`{not json`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps verification unavailability to the engine's status code", func() {
			engine.reconcileErr = internal.ErrVerificationUnavailable
			rec := post(`{"transaction_id": "TXN123"}`)
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("CancelPayment", func() {
		var handler *reconcile.Handler

		BeforeEach(func() {
			handler = reconcile.NewHandler(engine, testLogger)
		})

		post := func(body string, user *auth.User) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/cancel", bytes.NewBufferString(body))
			if user != nil {
				ctx := context.WithValue(req.Context(), auth.ContextUserKey, user)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.CancelPayment(rec, req)
			return rec
		}

		It("cancels on behalf of the authenticated user", func() {
			rec := post(`{"transaction_id": "TXN123", "status": "failed"}`, &auth.User{ID: 7})

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(engine.lastUserID).To(Equal(int64(7)))
			Expect(engine.lastRef).To(Equal("TXN123"))
			Expect(engine.lastStatus).To(Equal("failed"))
		})

		It("defaults the claimed status to cancelled", func() {
			rec := post(`{"transaction_id": "TXN123"}`, &auth.User{ID: 7})

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(engine.lastStatus).To(Equal("cancelled"))
		})

		It("requires an authenticated user", func() {
			rec := post(`{"transaction_id": "TXN123"}`, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Payment webhook", func() {
		var handler *reconcile.WebhookHandler

		BeforeEach(func() {
			handler = reconcile.NewWebhookHandler(transport.NewBaseHandler(testLogger), engine, testLogger)
		})

		post := func(body string) (*httptest.ResponseRecorder, reconcile.WebhookResponse) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			handler.HandlePaymentWebhook(rec, req)

			var resp reconcile.WebhookResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			return rec, resp
		}

		It("acknowledges and reconciles a well-formed notification", func() {
			rec, resp := post(`{"transaction_id": "TXN123", "status": "COMPLETED", "payment_method": "bkash"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(resp.Status).To(Equal("success"))
			Expect(resp.Message).To(Equal(reconcile.ResultCompleted))
			Expect(engine.lastRef).To(Equal("TXN123"))
		})

		It("falls back to the trx_id spelling", func() {
			rec, _ := post(`{"trx_id": "TXN456"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(engine.lastRef).To(Equal("TXN456"))
		})

		It("answers 200 even for a malformed body", func() {
			rec, resp := post(`{not json`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(resp.Status).To(Equal("ignored"))
		})

		It("answers 200 when no reference is present", func() {
			rec, resp := post(`{"status": "COMPLETED"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(resp.Status).To(Equal("ignored"))
		})

		It("answers 200 when reconciliation fails", func() {
			engine.reconcileErr = internal.ErrVerificationUnavailable
			rec, resp := post(`{"transaction_id": "TXN123"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(resp.Status).To(Equal("error"))
		})
	})
})
