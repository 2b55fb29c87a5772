package domain

import "context"

// AuthAPI is the authentication half of the remote contract.
type AuthAPI interface {
	Me(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
}

// DonationReader lists donations.
type DonationReader interface {
	ListDonations(ctx context.Context, q ListQuery) ([]Donation, error)
}

// DonationWriter performs donor-side and reservation writes.
type DonationWriter interface {
	CreateDonation(ctx context.Context, d NewDonation) (*Donation, error)
	UpdateDonation(ctx context.Context, id int64, u DonationUpdate) (*Donation, error)
	DeleteDonation(ctx context.Context, id int64) error
	Reserve(ctx context.Context, id int64) error
	CancelReservation(ctx context.Context, id int64) error
}

// ListQuery filters the donation list. Near is nil when no viewer location is known.
type ListQuery struct {
	Category Category
	Near     *Point
	RadiusKm float64
}

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}
