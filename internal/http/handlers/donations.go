package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"askida/internal/adapter/repo"
	"askida/internal/domain"
)

func (a *App) ListDonations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var query domain.ListQuery
	query.Category = domain.NormalizeCategory(q.Get("category"))

	lat, latOK, err := floatParam(q.Get("latitude"))
	if err != nil {
		a.invalid(w, "latitude", "value is not a valid float")
		return
	}
	lng, lngOK, err := floatParam(q.Get("longitude"))
	if err != nil {
		a.invalid(w, "longitude", "value is not a valid float")
		return
	}
	radius, _, err := floatParam(q.Get("radius_km"))
	if err != nil {
		a.invalid(w, "radius_km", "value is not a valid float")
		return
	}
	if latOK && lngOK {
		query.Near = &domain.Point{Latitude: lat, Longitude: lng}
		query.RadiusKm = radius
	}

	list := a.Donations.List(r.Context(), query, a.DefaultRadiusKm)
	msg := message(r, msgDonationsFound, len(list))
	if len(list) == 0 && query.Near != nil {
		msg = message(r, msgNoNearbyDonations)
	}
	a.ok(w, http.StatusOK, msg, list)
}

func (a *App) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, ok := a.donationID(w, r)
	if !ok {
		return
	}
	d, err := a.Donations.Get(r.Context(), id)
	if err != nil {
		a.writeRepoError(w, r, err, msgInternal)
		return
	}
	a.ok(w, http.StatusOK, message(r, msgDonationDetail), d)
}

func (a *App) CreateDonation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	if !domain.CapabilitiesFor(user.Role).CanPost {
		a.error(w, http.StatusForbidden, message(r, msgOnlyDonorsPost))
		return
	}
	var req domain.NewDonation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, message(r, msgInvalidPayload))
		return
	}
	switch {
	case strings.TrimSpace(req.Title) == "":
		a.invalid(w, "title", "field required")
		return
	case strings.TrimSpace(req.Description) == "":
		a.invalid(w, "description", "field required")
		return
	case domain.NormalizeCategory(string(req.Category)) == "":
		a.invalid(w, "category", "field required")
		return
	case req.Latitude < -90 || req.Latitude > 90:
		a.invalid(w, "latitude", "latitude out of range")
		return
	case req.Longitude < -180 || req.Longitude > 180:
		a.invalid(w, "longitude", "longitude out of range")
		return
	}
	d := a.Donations.Create(r.Context(), user.ID, req)
	a.Logger.Info().Int64("donation_id", d.ID).Int64("donor_id", user.ID).Msg("donation created")
	a.ok(w, http.StatusCreated, message(r, msgDonationCreated), d)
}

func (a *App) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.donationID(w, r)
	if !ok {
		return
	}
	var req domain.DonationUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, message(r, msgInvalidPayload))
		return
	}
	d, err := a.Donations.Update(r.Context(), id, user.ID, req)
	if err != nil {
		a.writeRepoError(w, r, err, msgOnlyOwnerUpdates)
		return
	}
	a.ok(w, http.StatusOK, message(r, msgDonationUpdated), d)
}

func (a *App) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.donationID(w, r)
	if !ok {
		return
	}
	if err := a.Donations.Delete(r.Context(), id, user.ID); err != nil {
		a.writeRepoError(w, r, err, msgOnlyOwnerDeletes)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ReserveDonation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.donationID(w, r)
	if !ok {
		return
	}
	if !domain.CapabilitiesFor(user.Role).CanReserve {
		a.error(w, http.StatusForbidden, message(r, msgRoleCannotReserve))
		return
	}
	d, err := a.Donations.Reserve(r.Context(), id, user.ID)
	if err != nil {
		a.writeRepoError(w, r, err, msgInternal)
		return
	}
	a.Logger.Info().Int64("donation_id", id).Int64("user_id", user.ID).Msg("donation reserved")
	a.ok(w, http.StatusOK, message(r, msgReserved), d)
}

func (a *App) CancelReservation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := a.donationID(w, r)
	if !ok {
		return
	}
	d, err := a.Donations.CancelReservation(r.Context(), id, user.ID)
	if err != nil {
		a.writeRepoError(w, r, err, msgInternal)
		return
	}
	a.Logger.Info().Int64("donation_id", id).Int64("user_id", user.ID).Msg("reservation cancelled")
	a.ok(w, http.StatusOK, message(r, msgReservationCancelled), d)
}

func (a *App) currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, message(r, msgInvalidCredentials))
		return domain.User{}, false
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusUnauthorized, message(r, msgUserNotFound))
		return domain.User{}, false
	}
	return user, true
}

func (a *App) donationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.invalid(w, "donation_id", "value is not a valid integer")
		return 0, false
	}
	return id, true
}

// writeRepoError maps repository errors onto status codes. ownerKey is the 403 message
// used when the caller does not own the donation.
func (a *App) writeRepoError(w http.ResponseWriter, r *http.Request, err error, ownerKey messageKey) {
	switch {
	case errors.Is(err, repo.ErrDonationNotFound):
		a.error(w, http.StatusNotFound, message(r, msgDonationNotFound))
	case errors.Is(err, repo.ErrNotOwner):
		a.error(w, http.StatusForbidden, message(r, ownerKey))
	case errors.Is(err, repo.ErrAlreadyReserved):
		a.error(w, http.StatusConflict, message(r, msgAlreadyReserved))
	case errors.Is(err, repo.ErrNotReserved):
		a.error(w, http.StatusConflict, message(r, msgNotReserved))
	case errors.Is(err, repo.ErrOwnDonation):
		a.error(w, http.StatusForbidden, message(r, msgOwnDonation))
	case errors.Is(err, repo.ErrNoCancelAuthority):
		a.error(w, http.StatusForbidden, message(r, msgNoCancelAuthority))
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("donation request failed")
		a.error(w, http.StatusInternalServerError, message(r, msgInternal))
	}
}

func floatParam(raw string) (float64, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
