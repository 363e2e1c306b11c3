package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemchat-backend/internal/handlers"
	"gemchat-backend/internal/middleware"
)

func New(
	sessionAuth *middleware.SessionAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// ──── Chat Routes (authenticated) ────
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Post("/chat", chatHandler.Chat)
			r.Get("/history/{sessionID}", chatHandler.History)
			r.Post("/new_chat", chatHandler.NewChat)
			r.Get("/sessions", chatHandler.Sessions)
		})
	})

	return r
}
