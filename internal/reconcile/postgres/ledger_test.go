package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
	"github.com/devrahi999/ihntopup/internal/reconcile"
)

func TestLedgerRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Ledger Repository Suite")
}

// SQLite-compatible schema twins: the production structs carry now() column
// defaults that SQLite cannot parse.
type UserSQLite struct {
	ID            int64   `gorm:"primaryKey"`
	Name          string  `gorm:"column:name"`
	Email         string  `gorm:"column:email"`
	PasswordHash  string  `gorm:"column:password_hash"`
	Role          string  `gorm:"column:role"`
	WalletBalance float64 `gorm:"column:wallet_balance"`
	IsActive      bool    `gorm:"column:is_active"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (UserSQLite) TableName() string { return "users" }

type OrderSQLite struct {
	ID                 int64   `gorm:"primaryKey"`
	UserID             int64   `gorm:"column:user_id"`
	PackID             *int64  `gorm:"column:pack_id"`
	CardID             *int64  `gorm:"column:card_id"`
	CardName           *string `gorm:"column:card_name"`
	PlayerUID          string  `gorm:"column:player_uid"`
	ItemName           string  `gorm:"column:item_name"`
	Diamonds           int     `gorm:"column:diamonds"`
	Quantity           int     `gorm:"column:quantity"`
	Amount             float64 `gorm:"column:amount"`
	Status             string  `gorm:"column:status"`
	GatewayTxnID       *string `gorm:"column:gateway_txn_id;uniqueIndex"`
	ProviderTrxID      *string `gorm:"column:provider_trx_id"`
	PaymentMethod      *string `gorm:"column:payment_method"`
	CancellationReason *string `gorm:"column:cancellation_reason"`
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (OrderSQLite) TableName() string { return "orders" }

type TransactionSQLite struct {
	ID                 int64   `gorm:"primaryKey"`
	UserID             int64   `gorm:"column:user_id"`
	Type               string  `gorm:"column:type"`
	Amount             float64 `gorm:"column:amount"`
	Description        string  `gorm:"column:description"`
	Method             string  `gorm:"column:method"`
	Status             string  `gorm:"column:status"`
	GatewayTxnID       *string `gorm:"column:gateway_txn_id;uniqueIndex"`
	ProviderTrxID      *string `gorm:"column:provider_trx_id"`
	CancellationReason *string `gorm:"column:cancellation_reason"`
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (TransactionSQLite) TableName() string { return "transactions" }

var _ = ginkgo.Describe("LedgerRepository", func() {
	var (
		db   *gorm.DB
		repo reconcile.Ledger
		ctx  context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&UserSQLite{}, &OrderSQLite{}, &TransactionSQLite{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.Create(&UserSQLite{
			ID: 1, Name: "Rahi", Email: "rahi@mail.com", Role: "customer",
			WalletBalance: 50, IsActive: true,
		}).Error
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = NewLedgerRepository(db)
		ctx = context.Background()
	})

	pendingOrder := func(ref string) *order.Order {
		o := &order.Order{UserID: 1, ItemName: "310 Diamonds", Diamonds: 310, Quantity: 1, Amount: 240}
		err := repo.CreatePendingOrder(ctx, o)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		if ref != "" {
			gomega.Expect(repo.AttachGatewayRef(ctx, gateway.KindTopup, o.ID, ref)).To(gomega.Succeed())
		}
		return o
	}

	pendingCredit := func(ref string) *wallet.Transaction {
		t := &wallet.Transaction{UserID: 1, Amount: 100, Method: "gateway"}
		err := repo.CreatePendingWalletCredit(ctx, t)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		if ref != "" {
			gomega.Expect(repo.AttachGatewayRef(ctx, gateway.KindWalletAdd, t.ID, ref)).To(gomega.Succeed())
		}
		return t
	}

	ginkgo.Describe("CreatePendingOrder", func() {
		ginkgo.It("forces the status to pending", func() {
			o := &order.Order{UserID: 1, ItemName: "x", Amount: 10, Status: "completed"}
			err := repo.CreatePendingOrder(ctx, o)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			var got OrderSQLite
			gomega.Expect(db.First(&got, o.ID).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(order.StatusPending))
		})
	})

	ginkgo.Describe("CreatePendingWalletCredit", func() {
		ginkgo.It("forces a pending credit", func() {
			t := &wallet.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"}
			err := repo.CreatePendingWalletCredit(ctx, t)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			var got TransactionSQLite
			gomega.Expect(db.First(&got, t.ID).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(wallet.StatusPending))
			gomega.Expect(got.Type).To(gomega.Equal(wallet.TypeCredit))
		})
	})

	ginkgo.Describe("AttachGatewayRef", func() {
		ginkgo.It("attaches a reference once", func() {
			o := pendingOrder("")
			err := repo.AttachGatewayRef(ctx, gateway.KindTopup, o.ID, "TXN123")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("refuses to overwrite an existing reference", func() {
			o := pendingOrder("TXN123")
			err := repo.AttachGatewayRef(ctx, gateway.KindTopup, o.ID, "TXN456")
			gomega.Expect(err).To(gomega.HaveOccurred())

			intent, err := repo.IntentByGatewayRef(ctx, "TXN123")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(intent.ID).To(gomega.Equal(o.ID))
		})
	})

	ginkgo.Describe("DeleteIntent", func() {
		ginkgo.It("removes a pending intent", func() {
			o := pendingOrder("")
			gomega.Expect(repo.DeleteIntent(ctx, gateway.KindTopup, o.ID)).To(gomega.Succeed())

			var count int64
			db.Model(&OrderSQLite{}).Where("id = ?", o.ID).Count(&count)
			gomega.Expect(count).To(gomega.BeZero())
		})

		ginkgo.It("leaves completed intents alone", func() {
			o := pendingOrder("TXN123")
			committed, err := repo.CommitOrder(ctx, o.ID, "bkash", "PRV1", 240)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(committed).To(gomega.BeTrue())

			gomega.Expect(repo.DeleteIntent(ctx, gateway.KindTopup, o.ID)).To(gomega.Succeed())

			var count int64
			db.Model(&OrderSQLite{}).Where("id = ?", o.ID).Count(&count)
			gomega.Expect(count).To(gomega.Equal(int64(1)))
		})
	})

	ginkgo.Describe("IntentByGatewayRef", func() {
		ginkgo.It("resolves an order reference", func() {
			o := pendingOrder("TXN123")

			intent, err := repo.IntentByGatewayRef(ctx, "TXN123")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(intent.Kind).To(gomega.Equal(gateway.KindTopup))
			gomega.Expect(intent.ID).To(gomega.Equal(o.ID))
			gomega.Expect(intent.Amount).To(gomega.Equal(240.0))
		})

		ginkgo.It("resolves a wallet credit reference", func() {
			t := pendingCredit("TXN456")

			intent, err := repo.IntentByGatewayRef(ctx, "TXN456")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(intent.Kind).To(gomega.Equal(gateway.KindWalletAdd))
			gomega.Expect(intent.ID).To(gomega.Equal(t.ID))
		})

		ginkgo.It("returns the sentinel for an unknown reference", func() {
			_, err := repo.IntentByGatewayRef(ctx, "NOPE")
			gomega.Expect(err).To(gomega.Equal(reconcile.ErrIntentNotFound))
		})
	})

	ginkgo.Describe("CommitOrder", func() {
		ginkgo.It("flips pending to completed exactly once", func() {
			o := pendingOrder("TXN123")

			first, err := repo.CommitOrder(ctx, o.ID, "bkash", "PRV1", 240)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(first).To(gomega.BeTrue())

			second, err := repo.CommitOrder(ctx, o.ID, "nagad", "PRV2", 240)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second).To(gomega.BeFalse())

			var got OrderSQLite
			gomega.Expect(db.First(&got, o.ID).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(order.StatusCompleted))
			gomega.Expect(*got.PaymentMethod).To(gomega.Equal("bkash"))
			gomega.Expect(*got.ProviderTrxID).To(gomega.Equal("PRV1"))
			gomega.Expect(got.CompletedAt).ToNot(gomega.BeNil())
		})

		ginkgo.It("does not resurrect a cancelled order", func() {
			o := pendingOrder("TXN123")
			n, err := repo.CancelByGatewayRef(ctx, "TXN123", "Payment failed")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(n).To(gomega.Equal(1))

			committed, err := repo.CommitOrder(ctx, o.ID, "bkash", "PRV1", 240)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(committed).To(gomega.BeFalse())

			var got OrderSQLite
			gomega.Expect(db.First(&got, o.ID).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(order.StatusCancelled))
		})
	})

	ginkgo.Describe("CommitWalletCredit", func() {
		ginkgo.It("flips the transaction and credits the balance atomically", func() {
			t := pendingCredit("TXN456")

			committed, err := repo.CommitWalletCredit(ctx, t.ID, "bkash", "PRV1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(committed).To(gomega.BeTrue())

			var u UserSQLite
			gomega.Expect(db.First(&u, 1).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.WalletBalance).To(gomega.Equal(150.0))
		})

		ginkgo.It("credits the balance only once under repeated commits", func() {
			t := pendingCredit("TXN456")

			first, err := repo.CommitWalletCredit(ctx, t.ID, "bkash", "PRV1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(first).To(gomega.BeTrue())

			second, err := repo.CommitWalletCredit(ctx, t.ID, "bkash", "PRV1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second).To(gomega.BeFalse())

			var u UserSQLite
			gomega.Expect(db.First(&u, 1).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.WalletBalance).To(gomega.Equal(150.0))
		})

		ginkgo.It("leaves the balance untouched for a cancelled credit", func() {
			t := pendingCredit("TXN456")
			_, err := repo.CancelByGatewayRef(ctx, "TXN456", "Payment failed")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			committed, err := repo.CommitWalletCredit(ctx, t.ID, "bkash", "PRV1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(committed).To(gomega.BeFalse())

			var u UserSQLite
			gomega.Expect(db.First(&u, 1).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.WalletBalance).To(gomega.Equal(50.0))
		})
	})

	ginkgo.Describe("CancelPendingByUser", func() {
		ginkgo.It("cancels pending intents across both tables", func() {
			pendingOrder("TXN1")
			pendingCredit("TXN2")
			completed := pendingOrder("TXN3")
			_, err := repo.CommitOrder(ctx, completed.ID, "bkash", "PRV1", 240)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			n, err := repo.CancelPendingByUser(ctx, 1, "Payment cancelled")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(n).To(gomega.Equal(2))

			var got OrderSQLite
			gomega.Expect(db.First(&got, completed.ID).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.Status).To(gomega.Equal(order.StatusCompleted))
		})
	})

	ginkgo.Describe("CancelIntent", func() {
		ginkgo.It("cancels a pending intent by kind and id", func() {
			o := pendingOrder("")

			cancelled, err := repo.CancelIntent(ctx, gateway.KindTopup, o.ID, "Payment expired")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(cancelled).To(gomega.BeTrue())

			cancelled, err = repo.CancelIntent(ctx, gateway.KindTopup, o.ID, "Payment expired")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(cancelled).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("ListStalePending", func() {
		ginkgo.It("returns only pending intents older than the cutoff", func() {
			o := pendingOrder("TXN1")
			t := pendingCredit("TXN2")
			pendingOrder("TXN3")

			old := time.Now().UTC().Add(-2 * time.Hour)
			gomega.Expect(db.Model(&OrderSQLite{}).Where("id = ?", o.ID).Update("created_at", old).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(db.Model(&TransactionSQLite{}).Where("id = ?", t.ID).Update("created_at", old).Error).ToNot(gomega.HaveOccurred())

			intents, err := repo.ListStalePending(ctx, time.Now().UTC().Add(-time.Hour), 50)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(intents).To(gomega.HaveLen(2))
		})
	})
})
