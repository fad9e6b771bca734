package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Event listing and registration require authentication; event creation,
// deletion, and registrant listing are admin only.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authController.SignUp)
	mux.HandleFunc("POST /api/auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /api/events", requireAuth(eventController.ListEvents))
	mux.HandleFunc("GET /api/events/{eventID}", requireAuth(eventController.GetEvent))
	mux.HandleFunc("POST /api/events", requireAuth(middleware.RequireAdmin(eventController.CreateEvent)))
	mux.HandleFunc("DELETE /api/events/{eventID}", requireAuth(middleware.RequireAdmin(eventController.DeleteEvent)))
	mux.HandleFunc("GET /api/events/{eventID}/registrations", requireAuth(middleware.RequireAdmin(eventController.ListRegistrations)))

	// Registrations
	mux.HandleFunc("POST /api/registrations", requireAuth(registrationController.Register))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
