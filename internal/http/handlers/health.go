package handlers

import (
	"net/http"
)

type healthReport struct {
	Status    string `json:"status"`
	Users     int    `json:"users"`
	Donations int    `json:"donations"`
	Reserved  int    `json:"reserved"`
}

// Health reports liveness together with the size of the in-memory tables.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	total, reserved := a.Donations.Counts(r.Context())
	a.json(w, http.StatusOK, healthReport{
		Status:    "ok",
		Users:     a.Users.Count(r.Context()),
		Donations: total,
		Reserved:  reserved,
	})
}
