package domain

// Donation is a posted food or item record that a non-owner can reserve.
type Donation struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       Category   `json:"category"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Quantity       *string    `json:"quantity,omitempty"`
	ExpirationDate *string    `json:"expiration_date,omitempty"`
	IsReserved     bool       `json:"is_reserved"`
	ReservedBy     *int64     `json:"reserved_by"`
	DonorID        *int64     `json:"donor_id"`
	IsForAnimals   bool       `json:"is_for_animals"`
	CreatedAt      *Timestamp `json:"created_at,omitempty"`
	UpdatedAt      *Timestamp `json:"updated_at,omitempty"`

	// Deprecated: the collection flow was removed; the flag is decoded but never acted on.
	IsCollected bool `json:"is_collected"`

	// Distance from the viewer in meters. Derived per view and never sent to the server.
	Distance *float64 `json:"distance,omitempty"`
}

// Normalize enforces the reservation invariant and canonicalizes the category.
func (d *Donation) Normalize() {
	if !d.IsReserved {
		d.ReservedBy = nil
	}
	d.Category = NormalizeCategory(string(d.Category))
}

// Available reports whether the donation can be reserved.
func (d Donation) Available() bool {
	return !d.IsReserved
}

// OwnedBy reports whether userID posted the donation.
func (d Donation) OwnedBy(userID int64) bool {
	return d.DonorID != nil && *d.DonorID == userID
}

// ReservedByUser reports whether userID holds the reservation.
func (d Donation) ReservedByUser(userID int64) bool {
	return d.IsReserved && d.ReservedBy != nil && *d.ReservedBy == userID
}

// CanCancel reports whether userID holds cancel authority: the reserving user or the owning donor.
func (d Donation) CanCancel(userID int64) bool {
	if !d.IsReserved {
		return false
	}
	return d.ReservedByUser(userID) || d.OwnedBy(userID)
}

// DistanceOrZero returns the computed distance, treating an absent value as 0.
func (d Donation) DistanceOrZero() float64 {
	if d.Distance == nil {
		return 0
	}
	return *d.Distance
}

// NewDonation is the creation payload.
type NewDonation struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       Category `json:"category"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Quantity       *string  `json:"quantity,omitempty"`
	ExpirationDate *string  `json:"expiration_date,omitempty"`
}

// DonationUpdate is a partial update. Location and expiration are fixed at creation.
type DonationUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Quantity    *string   `json:"quantity,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u DonationUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Quantity == nil
}
