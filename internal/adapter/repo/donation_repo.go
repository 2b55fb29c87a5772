package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"askida/internal/domain"
	"askida/internal/geo"
)

// DonationRepositoryMem is an in-memory donation table. Reservation changes are
// serialized by the write lock so that concurrent reserves have exactly one winner.
type DonationRepositoryMem struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Donation
	now    func() time.Time
}

// NewDonationRepository creates an empty table.
func NewDonationRepository() *DonationRepositoryMem {
	return &DonationRepositoryMem{
		rows: make(map[int64]domain.Donation),
		now:  time.Now,
	}
}

// Counts reports how many donations exist and how many of them are reserved.
func (r *DonationRepositoryMem) Counts(_ context.Context) (total, reserved int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.rows {
		if d.IsReserved {
			reserved++
		}
	}
	return len(r.rows), reserved
}

// List returns donations ordered by id. With q.Near set, only rows within q.RadiusKm
// (or defaultRadiusKm when unset) are returned.
func (r *DonationRepositoryMem) List(_ context.Context, q domain.ListQuery, defaultRadiusKm float64) []domain.Donation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	radius := q.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}
	out := make([]domain.Donation, 0, len(r.rows))
	for _, d := range r.rows {
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		if q.Near != nil {
			center := geo.Coordinates{Latitude: q.Near.Latitude, Longitude: q.Near.Longitude}
			at := geo.Coordinates{Latitude: d.Latitude, Longitude: d.Longitude}
			if !geo.WithinRadius(center, at, radius) {
				continue
			}
		}
		out = append(out, clone(d))
	}
	slices.SortFunc(out, func(a, b domain.Donation) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Get fetches one donation.
func (r *DonationRepositoryMem) Get(_ context.Context, id int64) (domain.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.rows[id]
	if !ok {
		return domain.Donation{}, ErrDonationNotFound
	}
	return clone(d), nil
}

// Create stores a donation posted by donorID.
func (r *DonationRepositoryMem) Create(_ context.Context, donorID int64, in domain.NewDonation) domain.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := domain.Timestamp{Time: r.now().UTC()}
	d := domain.Donation{
		ID:             r.nextID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       domain.NormalizeCategory(string(in.Category)),
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Quantity:       in.Quantity,
		ExpirationDate: in.ExpirationDate,
		DonorID:        &donorID,
		CreatedAt:      &now,
		UpdatedAt:      &now,
	}
	d.IsForAnimals = d.Category == domain.CategoryWasteFood
	r.rows[d.ID] = d
	return clone(d)
}

// Update applies a partial update on behalf of userID, who must own the donation.
func (r *DonationRepositoryMem) Update(_ context.Context, id, userID int64, u domain.DonationUpdate) (domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[id]
	if !ok {
		return domain.Donation{}, ErrDonationNotFound
	}
	if !d.OwnedBy(userID) {
		return domain.Donation{}, ErrNotOwner
	}
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.Category != nil {
		d.Category = domain.NormalizeCategory(string(*u.Category))
		d.IsForAnimals = d.Category == domain.CategoryWasteFood
	}
	if u.Quantity != nil {
		q := *u.Quantity
		d.Quantity = &q
	}
	r.touch(&d)
	r.rows[id] = d
	return clone(d), nil
}

// Delete removes a donation owned by userID.
func (r *DonationRepositoryMem) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[id]
	if !ok {
		return ErrDonationNotFound
	}
	if !d.OwnedBy(userID) {
		return ErrNotOwner
	}
	delete(r.rows, id)
	return nil
}

// Reserve marks the donation reserved by userID.
func (r *DonationRepositoryMem) Reserve(_ context.Context, id, userID int64) (domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[id]
	if !ok {
		return domain.Donation{}, ErrDonationNotFound
	}
	if d.OwnedBy(userID) {
		return domain.Donation{}, ErrOwnDonation
	}
	if d.IsReserved {
		return domain.Donation{}, ErrAlreadyReserved
	}
	d.IsReserved = true
	d.ReservedBy = &userID
	r.touch(&d)
	r.rows[id] = d
	return clone(d), nil
}

// CancelReservation releases the reservation. Only the reserving user or the donor may do so.
func (r *DonationRepositoryMem) CancelReservation(_ context.Context, id, userID int64) (domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[id]
	if !ok {
		return domain.Donation{}, ErrDonationNotFound
	}
	if !d.IsReserved {
		return domain.Donation{}, ErrNotReserved
	}
	if !d.CanCancel(userID) {
		return domain.Donation{}, ErrNoCancelAuthority
	}
	d.IsReserved = false
	d.ReservedBy = nil
	r.touch(&d)
	r.rows[id] = d
	return clone(d), nil
}

func (r *DonationRepositoryMem) touch(d *domain.Donation) {
	now := domain.Timestamp{Time: r.now().UTC()}
	d.UpdatedAt = &now
}

// clone detaches pointer fields so callers cannot mutate stored rows.
func clone(d domain.Donation) domain.Donation {
	if d.Quantity != nil {
		v := *d.Quantity
		d.Quantity = &v
	}
	if d.ExpirationDate != nil {
		v := *d.ExpirationDate
		d.ExpirationDate = &v
	}
	if d.ReservedBy != nil {
		v := *d.ReservedBy
		d.ReservedBy = &v
	}
	if d.DonorID != nil {
		v := *d.DonorID
		d.DonorID = &v
	}
	return d
}
