package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"askida/internal/adapter/repo"
	"askida/internal/infra"
	"askida/internal/middleware"
)

// App holds the dependencies shared by every handler.
type App struct {
	Users     *repo.UserRepositoryMem
	Donations *repo.DonationRepositoryMem
	Revoked   *repo.RevocationList
	Logger    infra.Logger

	JWTSecret       string
	TokenTTL        time.Duration
	DefaultRadiusKm float64
	BcryptCost      int
	Now             func() time.Time
}

// NewApp builds an App with empty in-memory repositories.
func NewApp(cfg *infra.ServerConfig, logger *infra.Logger) *App {
	l := zerolog.New(io.Discard)
	if logger != nil {
		l = logger.With().Str("component", "api").Logger()
	}
	return &App{
		Users:           repo.NewUserRepository(),
		Donations:       repo.NewDonationRepository(),
		Revoked:         repo.NewRevocationList(),
		Logger:          l,
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.TokenTTL,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		BcryptCost:      12,
		Now:             time.Now,
	}
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

type errorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// validationIssue mirrors one entry of a 422 detail list.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, code int, message string, data any) {
	a.json(w, code, envelope{Status: "success", Message: message, Data: data})
}

// error writes the {"detail": {"status": "error", "message": ...}} body.
func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"detail": errorDetail{Status: "error", Message: message}})
}

func (a *App) invalid(w http.ResponseWriter, field, msg string) {
	a.json(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []validationIssue{{Loc: []string{"body", field}, Msg: msg, Type: "value_error"}},
	})
}

// Unauthorized renders rejected bearer tokens.
func (a *App) Unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	a.Logger.Debug().Str("reason", reason).Str("path", r.URL.Path).Msg("auth rejected")
	a.error(w, http.StatusUnauthorized, message(r, msgInvalidCredentials))
}

// TooManyRequests renders rate limit rejections.
func (a *App) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusTooManyRequests, message(r, msgTooManyRequests))
}

func (a *App) currentUserID(r *http.Request) (int64, bool) {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) hashPassword(password string) ([]byte, error) {
	cost := a.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
