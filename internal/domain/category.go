package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category enumerates donation categories.
type Category string

const (
	CategoryCleanFood Category = "temiz yemek"
	CategoryWasteFood Category = "atık yemek"
)

// Legacy free-form categories from the first revision of the app.
const (
	CategoryLegacyFood      Category = "Gıda"
	CategoryLegacyClothing  Category = "Giyim"
	CategoryLegacyBook      Category = "Kitap"
	CategoryLegacyHousehold Category = "Ev Eşyası"
	CategoryLegacyOther     Category = "Diğer"
)

var turkishLower = cases.Lower(language.Turkish)

// Canonical reports whether c belongs to the two-category scheme.
func (c Category) Canonical() bool {
	return c == CategoryCleanFood || c == CategoryWasteFood
}

// Deprecated reports whether c comes from the legacy free-form scheme (or is unknown).
func (c Category) Deprecated() bool {
	return c != "" && !c.Canonical()
}

// NormalizeCategory trims input, drops a leading emoji label and folds the canonical names
// with Turkish casing so that "ATIK YEMEK" becomes "atık yemek". Legacy values keep their casing.
func NormalizeCategory(raw string) Category {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if first, rest, ok := strings.Cut(s, " "); ok && !containsLetter(first) {
		s = strings.TrimSpace(rest)
	}
	s = strings.Join(strings.Fields(s), " ")
	folded := Category(turkishLower.String(s))
	if folded.Canonical() {
		return folded
	}
	return Category(s)
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
