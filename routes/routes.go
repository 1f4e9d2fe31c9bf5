package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/NicoBaldowine/pickleplay/handlers"
	"github.com/NicoBaldowine/pickleplay/middleware"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Notification   *handlers.NotificationHandler
	Court          *handlers.CourtHandler
	Game           *handlers.GameHandler
	Partner        *handlers.PartnerHandler
	Wizard         *handlers.WizardHandler
	WebSocket      *handlers.WebSocketHandler
	Health         *handlers.HealthHandler
	TokenParser    middleware.TokenParser
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(h.TokenParser)

	router.Get("/healthz", h.Health.Health)
	router.Get("/openapi.json", handlers.OpenAPI())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.json")))

	router.With(authenticate).Get("/ws/games", h.WebSocket.ServeGames)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Route("/courts", func(r chi.Router) {
			r.Get("/", h.Court.ListCourts)
			r.Get("/{courtID}", h.Court.GetCourt)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.User.GetMe)
				r.Put("/", h.User.UpdateMe)
				r.Put("/password", h.Auth.UpdatePassword)
				r.Post("/avatar", h.User.UploadAvatar)
				r.Get("/notification-preferences", h.Notification.GetPreferences)
				r.Patch("/notification-preferences", h.Notification.UpdatePreferences)
			})

			r.Route("/games", func(r chi.Router) {
				r.Get("/available", h.Game.ListAvailable)
				r.Get("/schedules", h.Game.ListSchedules)
				r.Delete("/schedules/{gameID}", h.Game.DeleteSchedule)
			})

			r.Route("/partners", func(r chi.Router) {
				r.Get("/", h.Partner.ListPartners)
				r.Post("/", h.Partner.CreatePartner)
				r.Delete("/{partnerID}", h.Partner.DeletePartner)
			})

			r.Route("/wizard/sessions", func(r chi.Router) {
				r.Post("/", h.Wizard.OpenSession)
				r.Get("/{sessionID}", h.Wizard.GetSession)
				r.Post("/{sessionID}/events", h.Wizard.PostEvent)
				r.Delete("/{sessionID}", h.Wizard.CloseSession)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
