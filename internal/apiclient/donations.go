package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"askida/internal/domain"
)

// ListDonations fetches donations, optionally filtered by category and radius around Near.
func (c *Client) ListDonations(ctx context.Context, q domain.ListQuery) ([]domain.Donation, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", string(q.Category))
	}
	if q.Near != nil {
		query.Set("latitude", strconv.FormatFloat(q.Near.Latitude, 'f', -1, 64))
		query.Set("longitude", strconv.FormatFloat(q.Near.Longitude, 'f', -1, 64))
		if q.RadiusKm > 0 {
			query.Set("radius_km", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
		}
	}
	env, err := c.do(ctx, call{method: http.MethodGet, path: "/donations", query: query})
	if err != nil {
		return nil, err
	}
	var list []domain.Donation
	if err := decodeInto(env, &list, "donations"); err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Normalize()
		list[i].Distance = nil
	}
	return list, nil
}

// GetDonation fetches one donation by id.
func (c *Client) GetDonation(ctx context.Context, id int64) (*domain.Donation, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: donationPath(id, "")})
	if err != nil {
		return nil, err
	}
	return decodeDonation(env)
}

// CreateDonation posts a new donation as the signed-in donor.
func (c *Client) CreateDonation(ctx context.Context, d domain.NewDonation) (*domain.Donation, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, path: "/donations", body: d, auth: true})
	if err != nil {
		return nil, err
	}
	return decodeDonation(env)
}

// UpdateDonation sends a partial update containing only the non-nil fields.
func (c *Client) UpdateDonation(ctx context.Context, id int64, u domain.DonationUpdate) (*domain.Donation, error) {
	if u.Empty() {
		return nil, domain.Invalid("donation", "nothing to update")
	}
	env, err := c.do(ctx, call{method: http.MethodPatch, path: donationPath(id, ""), body: u, auth: true})
	if err != nil {
		return nil, err
	}
	return decodeDonation(env)
}

// DeleteDonation permanently removes a donation.
func (c *Client) DeleteDonation(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: donationPath(id, ""), auth: true})
	return err
}

// Reserve claims an available donation for the signed-in user.
func (c *Client) Reserve(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: donationPath(id, "reserve"), auth: true, route: routeReservation})
	return err
}

// CancelReservation releases a reservation held by the user, or on a donation the user owns.
func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: donationPath(id, "cancel_reservation"), auth: true, route: routeReservation})
	return err
}

func donationPath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("/donations/%d", id)
	}
	return fmt.Sprintf("/donations/%d/%s", id, action)
}

func decodeDonation(env *envelope) (*domain.Donation, error) {
	var d domain.Donation
	if err := decodeInto(env, &d, "donation"); err != nil {
		return nil, err
	}
	d.Normalize()
	d.Distance = nil
	return &d, nil
}

var (
	_ domain.DonationReader = (*Client)(nil)
	_ domain.DonationWriter = (*Client)(nil)
)
