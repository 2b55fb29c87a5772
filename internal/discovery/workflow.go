package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"askida/internal/domain"
	"askida/internal/geo"
	"askida/internal/infra"
)

// DefaultRadiusKm is the search radius sent with located list requests.
const DefaultRadiusKm = 10

// SessionView exposes the signed-in user to the workflow.
type SessionView interface {
	Current() *domain.Session
	Capabilities() domain.Capabilities
}

// Locator yields a single position fix or nil.
type Locator interface {
	CurrentLocation(ctx context.Context) *geo.Coordinates
}

// Options wires the discovery workflow.
type Options struct {
	Session  SessionView
	Locator  Locator
	API      domain.DonationReader
	Default  geo.Coordinates
	RadiusKm float64
	Logger   *infra.Logger
	Now      func() time.Time
}

// State is what a list or map view renders.
type State struct {
	All       []domain.Donation
	Displayed []domain.Donation
	Location  *geo.Coordinates
	// UsingDefault is set when Location is the configured fallback rather than a real fix.
	UsingDefault bool
	Filter       FilterKey
	Err          error
	LoadedAt     time.Time
}

// Workflow merges server state with the viewer location into a sorted, role-filtered view.
type Workflow struct {
	session  SessionView
	locator  Locator
	api      domain.DonationReader
	fallback geo.Coordinates
	radiusKm float64
	logger   *infra.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	seq     uint64
	applied uint64
}

// New builds a workflow with the filter set to all.
func New(opts Options) *Workflow {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	radius := opts.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	locator := opts.Locator
	if locator == nil {
		locator = geo.NewAccessor(nil, nil, logger)
	}
	return &Workflow{
		session:  opts.Session,
		locator:  locator,
		api:      opts.API,
		fallback: opts.Default,
		radiusKm: radius,
		logger:   logger,
		now:      now,
		state:    State{Filter: FilterAll},
	}
}

// Load is the initial screen load: it requires a session, acquires a fresh location (falling back
// to the default coordinate) and fetches the list.
func (w *Workflow) Load(ctx context.Context) (State, error) {
	if err := w.requireSession(); err != nil {
		return w.Snapshot(), err
	}
	loc, usingDefault := w.acquire(ctx, nil)
	return w.fetch(ctx, loc, usingDefault)
}

// Refresh is pull-to-refresh: it re-acquires the location and keeps the last known one when
// acquisition fails.
func (w *Workflow) Refresh(ctx context.Context) (State, error) {
	if err := w.requireSession(); err != nil {
		return w.Snapshot(), err
	}
	last, lastDefault := w.lastLocation()
	loc, usingDefault := w.acquire(ctx, last)
	if last != nil && loc == last {
		usingDefault = lastDefault
	}
	return w.fetch(ctx, loc, usingDefault)
}

// Focus re-fetches with the last known location when the view regains focus.
func (w *Workflow) Focus(ctx context.Context) (State, error) {
	if err := w.requireSession(); err != nil {
		return w.Snapshot(), err
	}
	loc, usingDefault := w.lastLocation()
	return w.fetch(ctx, loc, usingDefault)
}

// Reload re-fetches after a successful write without touching the location.
func (w *Workflow) Reload(ctx context.Context) (State, error) {
	return w.Focus(ctx)
}

// SetFilter recomputes the displayed list from the last enriched list. No request is made.
// Roles without the choose-filter capability are limited to all.
func (w *Workflow) SetFilter(key FilterKey) (State, error) {
	if _, err := ParseFilter(string(key)); err != nil {
		return w.Snapshot(), err
	}
	caps := w.capabilities()
	if key != FilterAll && !caps.CanChooseFilter {
		return w.Snapshot(), fmt.Errorf("discovery: filter %q: %w", key, domain.ErrForbidden)
	}

	w.mu.Lock()
	w.state.Filter = key
	w.state.Displayed = ApplyFilter(w.state.All, key, caps)
	w.mu.Unlock()
	return w.Snapshot(), nil
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyState(w.state)
}

// Find returns the donation with id from the last fetched list.
func (w *Workflow) Find(id int64) (domain.Donation, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range w.state.All {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Donation{}, false
}

func (w *Workflow) requireSession() error {
	if w.session == nil {
		return domain.ErrNotSignedIn
	}
	sess := w.session.Current()
	if sess == nil || sess.Token == "" {
		return domain.ErrNotSignedIn
	}
	return nil
}

func (w *Workflow) capabilities() domain.Capabilities {
	if w.session == nil {
		return domain.Capabilities{}
	}
	return w.session.Capabilities()
}

// acquire asks the locator for a fix. On failure it returns fallback when non-nil, else the
// configured default coordinate.
func (w *Workflow) acquire(ctx context.Context, fallback *geo.Coordinates) (*geo.Coordinates, bool) {
	if fix := w.locator.CurrentLocation(ctx); fix != nil {
		return fix, false
	}
	if fallback != nil {
		return fallback, false
	}
	def := w.fallback
	return &def, true
}

func (w *Workflow) lastLocation() (*geo.Coordinates, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Location == nil {
		return nil, false
	}
	loc := *w.state.Location
	return &loc, w.state.UsingDefault
}

func (w *Workflow) fetch(ctx context.Context, loc *geo.Coordinates, usingDefault bool) (State, error) {
	caps := w.capabilities()
	query := domain.ListQuery{}
	if loc != nil {
		p := loc.Point()
		query.Near = &p
		query.RadiusKm = w.radiusKm
	}
	if len(caps.Categories) == 1 {
		query.Category = caps.Categories[0]
	}

	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	list, err := w.api.ListDonations(ctx, query)

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq < w.applied {
		return copyState(w.state), err
	}
	w.applied = seq
	if err != nil {
		w.logger.Error().Err(err).Msg("discovery: list donations failed")
		w.state.Err = fmt.Errorf("discovery: load donations: %w", err)
		return copyState(w.state), w.state.Err
	}

	enriched := Enrich(list, loc)
	SortByDistance(enriched)
	if !caps.CanChooseFilter {
		w.state.Filter = FilterAll
	}
	w.state.All = enriched
	w.state.Displayed = ApplyFilter(enriched, w.state.Filter, caps)
	w.state.Location = loc
	w.state.UsingDefault = usingDefault && loc != nil
	w.state.Err = nil
	w.state.LoadedAt = w.now()
	w.logger.Debug().
		Int("total", len(enriched)).
		Int("displayed", len(w.state.Displayed)).
		Str("filter", string(w.state.Filter)).
		Msg("discovery: list loaded")
	return copyState(w.state), nil
}

func copyState(s State) State {
	out := s
	out.All = append([]domain.Donation(nil), s.All...)
	out.Displayed = append([]domain.Donation(nil), s.Displayed...)
	if s.Location != nil {
		loc := *s.Location
		out.Location = &loc
	}
	return out
}

// IsRetryable reports whether a load error is worth retrying as-is.
func IsRetryable(err error) bool {
	return err != nil && !errors.Is(err, domain.ErrNotSignedIn) && !errors.Is(err, domain.ErrUnauthorized)
}
