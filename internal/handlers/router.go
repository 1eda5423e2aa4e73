package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/BIHBOB/ssiteJungle/internal/store"
)

// NewRouter builds the API router. CSRF and the outer logging wrap happen
// in cmd/server so tests can hit the router directly.
func NewRouter(db *store.Store, sessionStore *sessions.CookieStore, uploadDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	auth := &Auth{Store: db, SessionStore: sessionStore}
	authHandler := &AuthHandler{Store: db, SessionStore: sessionStore}
	productHandler := &ProductHandler{Store: db}
	orderHandler := &OrderHandler{Store: db}
	promoHandler := &PromoHandler{Store: db}
	userHandler := &UserHandler{Store: db}
	reviewHandler := &ReviewHandler{Store: db, Auth: auth}
	settingsHandler := &SettingsHandler{Store: db}
	uploadHandler := &UploadHandler{Store: db, UploadDir: uploadDir}
	receiptHandler := &ReceiptHandler{Store: db, UploadDir: uploadDir}
	exportHandler := &ExportHandler{Store: db}

	// Separate limiters so a fresh registration doesn't lock the same
	// client out of checkout.
	authLimiter := NewRateLimiter(time.Second)
	orderLimiter := NewRateLimiter(time.Second)

	r.Route("/api", func(r chi.Router) {
		// Accounts
		r.Post("/register", authLimiter.Middleware(authHandler.Register))
		r.Post("/login", authLimiter.Middleware(authHandler.Login))
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", auth.RequireUser(authHandler.Me))
		r.Put("/me", auth.RequireUser(authHandler.UpdateMe))
		r.Post("/me/password", auth.RequireUser(authHandler.ChangePassword))
		r.Post("/me/balance", auth.RequireUser(authHandler.TopUpBalance))

		// Catalog
		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)
		r.Post("/products", auth.RequireAdmin(productHandler.Create))
		r.Put("/products/{id}", auth.RequireAdmin(productHandler.Update))
		r.Delete("/products/{id}", auth.RequireAdmin(productHandler.Delete))

		// Orders
		r.Post("/orders", auth.RequireUser(orderLimiter.Middleware(orderHandler.Create)))
		r.Get("/orders", auth.RequireUser(orderHandler.List))
		r.Get("/orders/{id}", auth.RequireUser(orderHandler.Get))
		r.Put("/orders/{id}", auth.RequireAdmin(orderHandler.Update))
		r.Put("/orders/{id}/status", auth.RequireAdmin(orderHandler.UpdateStatus))
		r.Delete("/orders/{id}", auth.RequireAdmin(orderHandler.Delete))
		r.Post("/orders/{orderId}/apply-promo", auth.RequireUser(orderHandler.ApplyPromo))
		r.Post("/orders/{id}/payment-proof", auth.RequireUser(uploadHandler.UploadPaymentProof))
		r.Post("/orders/{id}/receipt", auth.RequireAdmin(receiptHandler.Generate))

		// Promo codes
		r.Get("/promo-codes", auth.RequireAdmin(promoHandler.List))
		r.Post("/promo-codes", auth.RequireAdmin(promoHandler.Create))
		r.Put("/promo-codes/{id}", auth.RequireAdmin(promoHandler.Update))
		r.Delete("/promo-codes/{id}", auth.RequireAdmin(promoHandler.Delete))
		r.Post("/promo-codes/validate", promoHandler.Validate(auth))

		// Reviews
		r.Get("/reviews", reviewHandler.List)
		r.Post("/reviews", auth.RequireUser(reviewHandler.Create))
		r.Put("/reviews/{id}/approve", auth.RequireAdmin(reviewHandler.Approve))
		r.Delete("/reviews/{id}", auth.RequireAdmin(reviewHandler.Delete))

		// Checkout configuration
		r.Get("/payment-details", settingsHandler.GetPaymentDetails)
		r.Put("/payment-details", auth.RequireAdmin(settingsHandler.SavePaymentDetails))
		r.Get("/settings", settingsHandler.GetSettings)
		r.Put("/settings", auth.RequireAdmin(settingsHandler.SaveSettings))

		// Notifications
		r.Get("/notifications", auth.RequireUser(settingsHandler.ListNotifications))
		r.Post("/notifications/{id}/read", auth.RequireUser(settingsHandler.MarkNotificationRead))

		// Admin back-office
		r.Get("/users", auth.RequireAdmin(userHandler.List))
		r.Get("/users/{id}", auth.RequireAdmin(userHandler.Get))
		r.Put("/users/{id}", auth.RequireAdmin(userHandler.Update))
		r.Post("/users/{id}/balance", auth.RequireAdmin(userHandler.AdjustBalance))
		r.Post("/upload", auth.RequireAdmin(uploadHandler.UploadImage))
		r.Get("/stats", auth.RequireAdmin(statsHandler(db)))

		r.Route("/export", func(r chi.Router) {
			r.Get("/users", auth.RequireAdmin(exportHandler.Users))
			r.Get("/products", auth.RequireAdmin(exportHandler.Products))
			r.Get("/orders", auth.RequireAdmin(exportHandler.Orders))
			r.Get("/statistics", auth.RequireAdmin(exportHandler.Statistics))
		})
	})

	// Uploaded images and receipts
	fileServer := http.FileServer(http.Dir(uploadDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads", fileServer))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

func statsHandler(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := db.GetDashboardStats()
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
