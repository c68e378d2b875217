package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devrahi999/ihntopup/internal/admin"
	"github.com/devrahi999/ihntopup/internal/auth"
	"github.com/devrahi999/ihntopup/internal/catalog"
	"github.com/devrahi999/ihntopup/internal/order"
	"github.com/devrahi999/ihntopup/internal/reconcile"
	"github.com/devrahi999/ihntopup/internal/support"
	"github.com/devrahi999/ihntopup/internal/transport/middleware"
	"github.com/devrahi999/ihntopup/internal/transport/swagger"
	"github.com/devrahi999/ihntopup/internal/user"
	"github.com/devrahi999/ihntopup/internal/wallet"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Catalog   *catalog.Handler
	Wallet    *wallet.Handler
	Order     *order.Handler
	Support   *support.Handler
	Admin     *admin.Handler
	Reconcile *reconcile.Handler
	Webhook   *reconcile.WebhookHandler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Metrics)

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Gateway server-to-server notification, unauthenticated by design.
		if h.Webhook != nil {
			r.Post("/payment/webhook", h.Webhook.HandlePaymentWebhook)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", h.Auth.Register)
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// Public storefront catalog
		if h.Catalog != nil {
			r.Get("/categories", h.Catalog.ListCategories)
			r.Get("/packs", h.Catalog.ListPacks)
			r.Get("/packs/{id}", h.Catalog.GetPack)
			r.Get("/cards", h.Catalog.ListCards)
			r.Get("/banners", h.Catalog.ListBanners)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Patch("/users/me", h.User.UpdateProfile)
			}

			if h.Reconcile != nil {
				// Redirect landings drive the same engine as the webhook.
				// The cancel and failed pages share one handler; the landing
				// page reports the status it saw in the request body.
				pr.Post("/payment/verify", h.Reconcile.VerifyPayment)
				pr.Post("/payment/cancel", h.Reconcile.CancelPayment)
				pr.Post("/payment/failed", h.Reconcile.CancelPayment)
			}

			if h.Wallet != nil {
				pr.Route("/wallet", func(wr chi.Router) {
					wr.Get("/balance", h.Wallet.GetBalance)
					wr.Get("/transactions", h.Wallet.GetHistory)
					wr.Post("/recharge", h.Wallet.Recharge)
				})
			}

			if h.Order != nil {
				pr.Route("/orders", func(or chi.Router) {
					or.Post("/", h.Order.CreateTopup)
					or.Get("/", h.Order.GetUserOrders)
					or.Get("/{id}", h.Order.GetOrder)
				})
			}

			if h.Support != nil {
				pr.Route("/support", func(sr chi.Router) {
					sr.Post("/", h.Support.CreateTicket)
					sr.Get("/", h.Support.ListMyTickets)
				})
			}

			// Admin surface
			pr.Route("/admin", func(ar chi.Router) {
				if h.Admin != nil {
					ar.Group(func(gr chi.Router) {
						gr.Use(middleware.RequirePermissions(auth.PermAdmin))
						gr.Get("/dashboard", h.Admin.GetDashboard)
						gr.Get("/users", h.Admin.ListUsers)
					})
				}

				if h.Support != nil {
					ar.Group(func(gr chi.Router) {
						gr.Use(middleware.RequirePermissions(auth.PermAdmin))
						gr.Get("/support", h.Support.ListAllTickets)
						gr.Patch("/support/{id}", h.Support.UpdateTicket)
					})
				}

				if h.Order != nil {
					ar.Group(func(gr chi.Router) {
						gr.Use(middleware.RequirePermissions(auth.PermViewAllOrders))
						gr.Get("/orders", h.Order.GetAllOrders)
					})
				}

				if h.Catalog != nil {
					ar.Group(func(gr chi.Router) {
						gr.Use(middleware.RequirePermissions(auth.PermManageCatalog))

						gr.Post("/categories", h.Catalog.CreateCategory)
						gr.Put("/categories/{id}", h.Catalog.UpdateCategory)
						gr.Delete("/categories/{id}", h.Catalog.DeleteCategory)

						gr.Post("/packs", h.Catalog.CreatePack)
						gr.Put("/packs/{id}", h.Catalog.UpdatePack)
						gr.Delete("/packs/{id}", h.Catalog.DeletePack)

						gr.Post("/cards", h.Catalog.CreateCard)
						gr.Put("/cards/{id}", h.Catalog.UpdateCard)
						gr.Delete("/cards/{id}", h.Catalog.DeleteCard)

						gr.Post("/banners", h.Catalog.CreateBanner)
						gr.Delete("/banners/{id}", h.Catalog.DeleteBanner)
					})
				}
			})
		})
	})
}
