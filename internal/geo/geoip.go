package geo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"askida/internal/domain"
)

// ErrGeoIPUnavailable is returned when the provider has no database loaded.
var ErrGeoIPUnavailable = errors.New("geoip provider unavailable")

// CityLookup resolves an IP address to a city record.
type CityLookup interface {
	City(ip net.IP) (*geoip2.City, error)
}

// GeoIPProvider approximates the device position from a MaxMind GeoIP2 City database.
type GeoIPProvider struct {
	reader CityLookup
	closer func() error
	ip     net.IP
}

// NewGeoIPProvider opens the City database at path and resolves ip on every call.
// An empty path yields a nil provider and no error.
func NewGeoIPProvider(path, ip string) (*GeoIPProvider, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return nil, fmt.Errorf("geoip: invalid lookup ip %q", ip)
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &GeoIPProvider{reader: reader, closer: reader.Close, ip: parsed}, nil
}

// NewGeoIPProviderWithLookup wires an already opened lookup.
func NewGeoIPProviderWithLookup(lookup CityLookup, ip net.IP) *GeoIPProvider {
	return &GeoIPProvider{reader: lookup, ip: ip}
}

// Position returns the city-level location of the configured IP. Accuracy is the database
// accuracy radius converted to meters.
func (p *GeoIPProvider) Position(ctx context.Context) (Coordinates, error) {
	if p == nil || p.reader == nil {
		return Coordinates{}, ErrGeoIPUnavailable
	}
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	record, err := p.reader.City(p.ip)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geoip: lookup city: %w", err)
	}
	if record == nil || (record.Location.Latitude == 0 && record.Location.Longitude == 0) {
		return Coordinates{}, domain.ErrLocationUnavailable
	}
	fix := Coordinates{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if record.Location.AccuracyRadius > 0 {
		meters := float64(record.Location.AccuracyRadius) * 1000
		fix.Accuracy = &meters
	}
	return fix, nil
}

// Close closes the underlying database reader.
func (p *GeoIPProvider) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}
