package geo

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"askida/internal/domain"
	"askida/internal/infra"
)

// Coordinates is a single position fix.
type Coordinates struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Point converts the fix to the domain representation used in list queries.
func (c Coordinates) Point() domain.Point {
	return domain.Point{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Provider produces position fixes.
type Provider interface {
	Position(ctx context.Context) (Coordinates, error)
}

// Permission grants or denies access to the provider.
type Permission interface {
	Request(ctx context.Context) (bool, error)
}

// StaticPermission is a fixed permission answer.
type StaticPermission bool

func (p StaticPermission) Request(context.Context) (bool, error) {
	return bool(p), nil
}

// WatchOptions filters streamed updates.
type WatchOptions struct {
	MinInterval time.Duration
	MinDistance float64
}

const (
	DefaultWatchInterval = 5 * time.Second
	DefaultWatchDistance = 10.0
)

// Accessor wraps a provider behind a permission check. CurrentLocation never returns an error:
// every failure reduces to "no location available".
type Accessor struct {
	provider   Provider
	permission Permission
	logger     *infra.Logger
}

// NewAccessor builds an accessor. A nil permission is treated as granted.
func NewAccessor(provider Provider, permission Permission, logger *infra.Logger) *Accessor {
	if permission == nil {
		permission = StaticPermission(true)
	}
	if provider == nil {
		provider = UnavailableProvider{}
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Accessor{provider: provider, permission: permission, logger: logger}
}

// CurrentLocation returns a single fix or nil when permission is denied or the provider fails.
func (a *Accessor) CurrentLocation(ctx context.Context) *Coordinates {
	if err := a.ensurePermission(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("geo: location permission not granted")
		return nil
	}
	fix, err := a.provider.Position(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("geo: location unavailable")
		return nil
	}
	return &fix
}

// CurrentOrDefault returns the current fix or the fallback coordinate.
func (a *Accessor) CurrentOrDefault(ctx context.Context, fallback Coordinates) Coordinates {
	if fix := a.CurrentLocation(ctx); fix != nil {
		return *fix
	}
	return fallback
}

func (a *Accessor) ensurePermission(ctx context.Context) error {
	granted, err := a.permission.Request(ctx)
	if err != nil {
		return errors.Join(domain.ErrPermissionDenied, err)
	}
	if !granted {
		return domain.ErrPermissionDenied
	}
	return nil
}

// Subscription is a running location watch. Stop ends it; it is safe to call more than once,
// including from inside the watch callback.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the watch without waiting for it; receive from Done to wait.
func (s *Subscription) Stop() {
	s.once.Do(s.cancel)
}

// Done is closed once the polling goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Watch delivers fixes to callback until the subscription is stopped or ctx ends. The first fix
// is always delivered; later ones only when at least MinInterval has passed and the position moved
// MinDistance meters from the last delivered fix.
func (a *Accessor) Watch(ctx context.Context, opts WatchOptions, callback func(Coordinates)) (*Subscription, error) {
	if callback == nil {
		return nil, errors.New("geo: watch callback is required")
	}
	if err := a.ensurePermission(ctx); err != nil {
		return nil, err
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultWatchInterval
	}
	if opts.MinDistance <= 0 {
		opts.MinDistance = DefaultWatchDistance
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		ticker := time.NewTicker(opts.MinInterval)
		defer ticker.Stop()

		var last *Coordinates
		poll := func() {
			fix, err := a.provider.Position(watchCtx)
			if err != nil {
				a.logger.Debug().Err(err).Msg("geo: watch poll failed")
				return
			}
			if watchCtx.Err() != nil {
				return
			}
			if last != nil && Distance(*last, fix) < opts.MinDistance {
				return
			}
			last = &fix
			callback(fix)
		}

		poll()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()
	return sub, nil
}
