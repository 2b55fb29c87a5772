package discovery

import (
	"fmt"
	"slices"
	"strings"

	"askida/internal/domain"
	"askida/internal/geo"
)

// FilterKey selects the displayed subset of the enriched list.
type FilterKey string

const (
	FilterAll      FilterKey = "all"
	FilterClean    FilterKey = "temiz"
	FilterWaste    FilterKey = "atik"
	FilterReserved FilterKey = "reserved"
)

// FilterKeys lists the supported keys in display order.
var FilterKeys = []FilterKey{FilterAll, FilterClean, FilterWaste, FilterReserved}

// ParseFilter validates a filter key. The empty string means all.
func ParseFilter(s string) (FilterKey, error) {
	key := FilterKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return FilterAll, nil
	}
	if slices.Contains(FilterKeys, key) {
		return key, nil
	}
	return "", domain.Invalid("filter", fmt.Sprintf("unknown filter %q (want all, temiz, atik or reserved)", s))
}

// Enrich returns a copy of list with Distance set from loc. A nil loc leaves distances unset.
func Enrich(list []domain.Donation, loc *geo.Coordinates) []domain.Donation {
	out := make([]domain.Donation, len(list))
	for i, d := range list {
		d.Distance = nil
		if loc != nil {
			meters := geo.Distance(*loc, geo.Coordinates{Latitude: d.Latitude, Longitude: d.Longitude})
			d.Distance = &meters
		}
		out[i] = d
	}
	return out
}

// SortByDistance orders list ascending by distance in place. The sort is stable and an absent
// distance counts as 0.
func SortByDistance(list []domain.Donation) {
	slices.SortStableFunc(list, func(a, b domain.Donation) int {
		da, db := a.DistanceOrZero(), b.DistanceOrZero()
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
}

// ApplyFilter narrows list to what caps may see, then to key. It never mutates list.
func ApplyFilter(list []domain.Donation, key FilterKey, caps domain.Capabilities) []domain.Donation {
	out := make([]domain.Donation, 0, len(list))
	for _, d := range list {
		if !caps.Sees(d.Category) {
			continue
		}
		switch key {
		case FilterClean:
			if d.Category != domain.CategoryCleanFood {
				continue
			}
		case FilterWaste:
			if d.Category != domain.CategoryWasteFood {
				continue
			}
		case FilterReserved:
			if !d.IsReserved {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}
