package reservation

import (
	"strings"
	"unicode/utf8"

	"askida/internal/domain"
	"askida/internal/geo"
)

const (
	minTitleLength       = 3
	minDescriptionLength = 10
)

// EditForm holds the editable fields of a donation.
type EditForm struct {
	Title       string
	Description string
	Category    string
	Quantity    string
}

// PrefillEdit loads the current values of d into an edit form.
func PrefillEdit(d domain.Donation) EditForm {
	form := EditForm{
		Title:       d.Title,
		Description: d.Description,
		Category:    string(d.Category),
	}
	if d.Quantity != nil {
		form.Quantity = *d.Quantity
	}
	return form
}

// Update validates the form and builds the partial payload.
func (f EditForm) Update() (domain.DonationUpdate, error) {
	title, description, category, err := validateCommon(f.Title, f.Description, f.Category)
	if err != nil {
		return domain.DonationUpdate{}, err
	}
	update := domain.DonationUpdate{
		Title:       &title,
		Description: &description,
		Category:    &category,
	}
	if q := strings.TrimSpace(f.Quantity); q != "" {
		update.Quantity = &q
	}
	return update, nil
}

// PostForm holds the add-donation fields. A nil Location means "use the current position".
type PostForm struct {
	Title          string
	Description    string
	Category       string
	Quantity       string
	ExpirationDate string
	Location       *geo.Coordinates
}

// Payload validates the form and builds the creation payload at loc.
func (f PostForm) Payload(loc geo.Coordinates) (domain.NewDonation, error) {
	category := f.Category
	if strings.TrimSpace(category) == "" {
		category = string(domain.CategoryCleanFood)
	}
	title, description, normalized, err := validateCommon(f.Title, f.Description, category)
	if err != nil {
		return domain.NewDonation{}, err
	}
	if normalized.Deprecated() {
		return domain.NewDonation{}, domain.Invalid("category", "category must be temiz yemek or atık yemek")
	}
	payload := domain.NewDonation{
		Title:       title,
		Description: description,
		Category:    normalized,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
	}
	if q := strings.TrimSpace(f.Quantity); q != "" {
		payload.Quantity = &q
	}
	if e := strings.TrimSpace(f.ExpirationDate); e != "" {
		payload.ExpirationDate = &e
	}
	return payload, nil
}

func validateCommon(title, description, category string) (string, string, domain.Category, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return "", "", "", domain.Invalid("title", "title is required")
	case utf8.RuneCountInString(title) < minTitleLength:
		return "", "", "", domain.Invalid("title", "title must be at least 3 characters")
	case description == "":
		return "", "", "", domain.Invalid("description", "description is required")
	case utf8.RuneCountInString(description) < minDescriptionLength:
		return "", "", "", domain.Invalid("description", "description must be at least 10 characters")
	}
	normalized := domain.NormalizeCategory(category)
	if normalized == "" {
		return "", "", "", domain.Invalid("category", "category is required")
	}
	return title, description, normalized, nil
}
