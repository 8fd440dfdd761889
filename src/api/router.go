package api

import (
	"net/http"

	"fingenius-server/src/db"
	"fingenius-server/src/handlers"
	"fingenius-server/src/insights"
	"fingenius-server/src/middleware"
	"fingenius-server/src/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(store db.Store, auth *middleware.Auth, insightSvc *insights.Service, deriver *notify.Deriver, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", handlers.Register(store))
		r.Post("/auth/login", handlers.Login(store, auth))

		// Protected routes
		r.With(auth.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/auth/profile", handlers.GetProfile(store))
			r.Get("/user/profile", handlers.GetProfile(store))
			r.Put("/user/profile", handlers.UpdateProfile(store, auth))

			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(store, insightSvc))
			r.Get("/transactions", handlers.GetTransactions(store))
			r.Put("/transactions/{id}", handlers.UpdateTransaction(store, insightSvc))
			r.Delete("/transactions/{id}", handlers.DeleteTransaction(store, insightSvc))

			// Goals
			r.Get("/goals", handlers.GetGoal(store))
			r.Post("/goals", handlers.SetGoal(store))

			r.Get("/notifications", handlers.GetNotifications(deriver))
			r.Get("/ai/insights", handlers.GetInsights(insightSvc))
		})
	})

	return r
}
