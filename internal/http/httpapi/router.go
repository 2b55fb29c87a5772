package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"askida/internal/http/handlers"
	"askida/internal/infra"
	"askida/internal/middleware"
)

// NewRouter wires the donation API routes.
func NewRouter(app *handlers.App, cfg *infra.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N,
	)

	r.Get("/healthz", app.Health)

	authRequired := middleware.AuthJWT(app.JWTSecret, app.Revoked.Revoked, app.Unauthorized)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute, app.TooManyRequests))
			r.Post("/register", app.Register)
			r.Post("/login", app.Login)
		})
		r.With(authRequired).Get("/me", app.Me)
		r.With(authRequired).Post("/logout", app.Logout)
	})

	r.Route("/donations", func(r chi.Router) {
		r.Get("/", app.ListDonations)
		r.Get("/{id}", app.GetDonation)
		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Post("/", app.CreateDonation)
			r.Patch("/{id}", app.UpdateDonation)
			r.Delete("/{id}", app.DeleteDonation)
			r.Post("/{id}/reserve", app.ReserveDonation)
			r.Post("/{id}/cancel_reservation", app.CancelReservation)
		})
	})

	return r
}
