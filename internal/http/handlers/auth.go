package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"askida/internal/adapter/repo"
	"askida/internal/domain"
	"askida/internal/middleware"
)

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `json:"user_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, message(r, msgInvalidPayload))
		return
	}
	role, err := domain.ParseRole(req.UserType)
	if err != nil {
		a.invalid(w, "user_type", err.Error())
		return
	}
	switch {
	case strings.TrimSpace(req.FullName) == "":
		a.invalid(w, "full_name", "field required")
		return
	case !validEmail(req.Email):
		a.invalid(w, "email", "value is not a valid email address")
		return
	case len(req.Password) < 6:
		a.invalid(w, "password", "ensure this value has at least 6 characters")
		return
	}
	hash, err := a.hashPassword(req.Password)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, message(r, msgInternal))
		return
	}
	user, err := a.Users.Create(r.Context(), domain.User{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
	}, hash)
	if errors.Is(err, repo.ErrEmailTaken) {
		a.error(w, http.StatusBadRequest, message(r, msgEmailTaken))
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("create user failed")
		a.error(w, http.StatusInternalServerError, message(r, msgInternal))
		return
	}
	a.issueToken(w, r, http.StatusCreated, user, msgRegistered)
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, message(r, msgInvalidPayload))
		return
	}
	stored, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		a.error(w, http.StatusNotFound, message(r, msgEmailNotFound))
		return
	}
	if err := bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte(req.Password)); err != nil {
		a.error(w, http.StatusBadRequest, message(r, msgWrongPassword))
		return
	}
	a.issueToken(w, r, http.StatusOK, stored.User, msgLoggedIn)
}

func (a *App) issueToken(w http.ResponseWriter, r *http.Request, code int, user domain.User, key messageKey) {
	token, err := middleware.SignToken(a.JWTSecret, user.ID, a.TokenTTL, a.now())
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, message(r, msgInternal))
		return
	}
	a.json(w, code, envelope{Status: "success", Message: message(r, key), Data: user, Token: token})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, message(r, msgInvalidCredentials))
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusUnauthorized, message(r, msgUserNotFound))
		return
	}
	a.ok(w, http.StatusOK, "", user)
}

// Logout revokes the presented token for the rest of its lifetime.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.Revoked.Revoke(middleware.TokenIDFromContext(r.Context()), a.now().Add(a.TokenTTL+time.Minute))
	a.ok(w, http.StatusOK, message(r, msgLoggedOut), nil)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	return err == nil && addr.Address == strings.TrimSpace(s)
}
