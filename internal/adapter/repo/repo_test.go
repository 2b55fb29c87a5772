package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"askida/internal/domain"
)

func seedDonation(t *testing.T, r *DonationRepositoryMem, donor int64, lat, lng float64, category domain.Category) domain.Donation {
	t.Helper()
	return r.Create(context.Background(), donor, domain.NewDonation{
		Title:       "Ekmek",
		Description: "Taze ekmek, bugün pişti",
		Category:    category,
		Latitude:    lat,
		Longitude:   lng,
	})
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	u, err := r.Create(ctx, domain.User{FullName: "Ayşe", Email: "Ayse@Example.com", Role: domain.RoleDonor}, []byte("hash"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if u.ID != 1 || u.Email != "ayse@example.com" {
		t.Fatalf("Create() = %+v", u)
	}
	if _, err := r.Create(ctx, domain.User{Email: "ayse@example.com "}, nil); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate Create() error = %v, want ErrEmailTaken", err)
	}
	got, err := r.GetByEmail(ctx, "AYSE@example.com")
	if err != nil || got.ID != u.ID || string(got.PasswordHash) != "hash" {
		t.Fatalf("GetByEmail() = %+v, %v", got, err)
	}
	if _, err := r.GetByID(ctx, 99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetByID(99) error = %v", err)
	}
}

func TestDonationListRadiusAndCategory(t *testing.T) {
	r := NewDonationRepository()
	ctx := context.Background()
	seedDonation(t, r, 1, 41.0100, 28.9800, domain.CategoryCleanFood)
	seedDonation(t, r, 1, 41.0150, 28.9850, domain.CategoryWasteFood)
	seedDonation(t, r, 1, 39.9208, 32.8541, domain.CategoryCleanFood) // Ankara

	center := &domain.Point{Latitude: 41.0082, Longitude: 28.9784}
	tests := []struct {
		name  string
		query domain.ListQuery
		want  []int64
	}{
		{name: "unfiltered", query: domain.ListQuery{}, want: []int64{1, 2, 3}},
		{name: "default radius", query: domain.ListQuery{Near: center}, want: []int64{1, 2}},
		{name: "category", query: domain.ListQuery{Near: center, Category: domain.CategoryWasteFood}, want: []int64{2}},
		{name: "wide radius", query: domain.ListQuery{Near: center, RadiusKm: 500}, want: []int64{1, 2, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := r.List(ctx, tc.query, 5)
			if len(got) != len(tc.want) {
				t.Fatalf("List() returned %d rows, want %d", len(got), len(tc.want))
			}
			for i, d := range got {
				if d.ID != tc.want[i] {
					t.Fatalf("List()[%d].ID = %d, want %d", i, d.ID, tc.want[i])
				}
			}
		})
	}
}

func TestDonationOwnerOnlyWrites(t *testing.T) {
	r := NewDonationRepository()
	ctx := context.Background()
	d := seedDonation(t, r, 1, 41, 29, domain.CategoryCleanFood)

	title := "Pilav"
	if _, err := r.Update(ctx, d.ID, 2, domain.DonationUpdate{Title: &title}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("Update() by stranger error = %v", err)
	}
	updated, err := r.Update(ctx, d.ID, 1, domain.DonationUpdate{Title: &title})
	if err != nil || updated.Title != "Pilav" || updated.Description != d.Description {
		t.Fatalf("Update() = %+v, %v", updated, err)
	}
	if err := r.Delete(ctx, d.ID, 2); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("Delete() by stranger error = %v", err)
	}
	if err := r.Delete(ctx, d.ID, 1); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := r.Get(ctx, d.ID); !errors.Is(err, ErrDonationNotFound) {
		t.Fatalf("Get() after delete error = %v", err)
	}
}

func TestDonationReservationRules(t *testing.T) {
	r := NewDonationRepository()
	ctx := context.Background()
	d := seedDonation(t, r, 1, 41, 29, domain.CategoryCleanFood)

	if _, err := r.Reserve(ctx, d.ID, 1); !errors.Is(err, ErrOwnDonation) {
		t.Fatalf("owner Reserve() error = %v", err)
	}
	if _, err := r.CancelReservation(ctx, d.ID, 2); !errors.Is(err, ErrNotReserved) {
		t.Fatalf("Cancel() on available error = %v", err)
	}
	got, err := r.Reserve(ctx, d.ID, 2)
	if err != nil || !got.IsReserved || *got.ReservedBy != 2 {
		t.Fatalf("Reserve() = %+v, %v", got, err)
	}
	if _, err := r.Reserve(ctx, d.ID, 3); !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("second Reserve() error = %v", err)
	}
	if _, err := r.CancelReservation(ctx, d.ID, 3); !errors.Is(err, ErrNoCancelAuthority) {
		t.Fatalf("stranger Cancel() error = %v", err)
	}
	got, err = r.CancelReservation(ctx, d.ID, 1)
	if err != nil || got.IsReserved || got.ReservedBy != nil {
		t.Fatalf("donor Cancel() = %+v, %v", got, err)
	}
}

func TestDonationConcurrentReserveSingleWinner(t *testing.T) {
	r := NewDonationRepository()
	ctx := context.Background()
	d := seedDonation(t, r, 1, 41, 29, domain.CategoryCleanFood)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for user := int64(2); user < 12; user++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			if _, err := r.Reserve(ctx, d.ID, user); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(user)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}

func TestRevocationList(t *testing.T) {
	l := NewRevocationList()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Revoke("a", now.Add(time.Hour))
	l.Revoke("", now.Add(time.Hour))
	if !l.Revoked("a") || l.Revoked("b") || l.Revoked("") {
		t.Fatalf("unexpected revocation state")
	}
	now = now.Add(2 * time.Hour)
	if l.Revoked("a") {
		t.Fatalf("expired revocation should no longer apply")
	}
}
