package geo

import (
	"context"

	"askida/internal/domain"
)

// StaticProvider always reports the same fix. It stands in for a device GPS mock.
type StaticProvider struct {
	Fix Coordinates
}

func (p StaticProvider) Position(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return p.Fix, nil
}

// UnavailableProvider never produces a fix.
type UnavailableProvider struct{}

func (UnavailableProvider) Position(context.Context) (Coordinates, error) {
	return Coordinates{}, domain.ErrLocationUnavailable
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (Coordinates, error)

func (f ProviderFunc) Position(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}
