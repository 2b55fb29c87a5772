package reservation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"askida/internal/discovery"
	"askida/internal/domain"
	"askida/internal/geo"
	"askida/internal/infra"
)

// Reloader re-fetches the discovery list after a successful write.
type Reloader interface {
	Reload(ctx context.Context) (discovery.State, error)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Options wires the reservation workflow.
type Options struct {
	Session discovery.SessionView
	API     domain.DonationWriter
	Lists   Reloader
	Locator discovery.Locator
	Default geo.Coordinates
	Logger  *infra.Logger
}

// Workflow issues reserve, cancel and donor writes against single donations. At most one write
// per donation id is in flight from this client; the list is re-fetched after every success
// rather than patched locally.
type Workflow struct {
	session  discovery.SessionView
	api      domain.DonationWriter
	lists    Reloader
	locator  discovery.Locator
	fallback geo.Coordinates
	logger   *infra.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// New builds a reservation workflow.
func New(opts Options) *Workflow {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	locator := opts.Locator
	if locator == nil {
		locator = geo.NewAccessor(nil, nil, logger)
	}
	return &Workflow{
		session:  opts.Session,
		api:      opts.API,
		lists:    opts.Lists,
		locator:  locator,
		fallback: opts.Default,
		logger:   logger,
		inFlight: make(map[int64]struct{}),
	}
}

// Reserve claims an available donation for the viewer.
func (w *Workflow) Reserve(ctx context.Context, d domain.Donation) error {
	viewer, caps, err := w.viewer()
	if err != nil {
		return err
	}
	switch {
	case !caps.CanReserve:
		return fmt.Errorf("reservation: reserve %d: role cannot reserve: %w", d.ID, domain.ErrForbidden)
	case !d.Available():
		return fmt.Errorf("reservation: reserve %d: already reserved: %w", d.ID, domain.ErrConflict)
	case d.OwnedBy(viewer.ID):
		return fmt.Errorf("reservation: reserve %d: own donation: %w", d.ID, domain.ErrForbidden)
	}
	return w.run(ctx, d.ID, "reserve", func(ctx context.Context) error {
		return w.api.Reserve(ctx, d.ID)
	})
}

// Cancel releases a reservation. Only the reserving user or the owning donor may cancel.
func (w *Workflow) Cancel(ctx context.Context, d domain.Donation) error {
	viewer, _, err := w.viewer()
	if err != nil {
		return err
	}
	if !d.IsReserved {
		return fmt.Errorf("reservation: cancel %d: not reserved: %w", d.ID, domain.ErrConflict)
	}
	if !d.CanCancel(viewer.ID) {
		return fmt.Errorf("reservation: cancel %d: %w", d.ID, domain.ErrForbidden)
	}
	return w.run(ctx, d.ID, "cancel", func(ctx context.Context) error {
		return w.api.CancelReservation(ctx, d.ID)
	})
}

// Delete removes a donation after the user confirms. Ownership is left to the server.
func (w *Workflow) Delete(ctx context.Context, d domain.Donation, confirm Confirmer) error {
	_, caps, err := w.viewer()
	if err != nil {
		return err
	}
	if !caps.CanEditOwn {
		return fmt.Errorf("reservation: delete %d: role cannot delete: %w", d.ID, domain.ErrForbidden)
	}
	if w.InFlight(d.ID) {
		return fmt.Errorf("reservation: delete %d: %w", d.ID, domain.ErrActionInFlight)
	}
	if confirm == nil {
		return fmt.Errorf("reservation: delete %d: %w", d.ID, domain.ErrNotConfirmed)
	}
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Permanently delete %q?", d.Title))
	if err != nil {
		return fmt.Errorf("reservation: delete %d: confirm: %w", d.ID, err)
	}
	if !ok {
		return domain.ErrNotConfirmed
	}
	return w.run(ctx, d.ID, "delete", func(ctx context.Context) error {
		return w.api.DeleteDonation(ctx, d.ID)
	})
}

// Edit sends the form as a partial update of title, description, category and quantity.
func (w *Workflow) Edit(ctx context.Context, d domain.Donation, form EditForm) (*domain.Donation, error) {
	_, caps, err := w.viewer()
	if err != nil {
		return nil, err
	}
	if !caps.CanEditOwn {
		return nil, fmt.Errorf("reservation: edit %d: role cannot edit: %w", d.ID, domain.ErrForbidden)
	}
	update, err := form.Update()
	if err != nil {
		return nil, err
	}
	var updated *domain.Donation
	err = w.run(ctx, d.ID, "edit", func(ctx context.Context) error {
		var err error
		updated, err = w.api.UpdateDonation(ctx, d.ID, update)
		return err
	})
	return updated, err
}

// Post creates a donation at the form location, the current fix or the default coordinate.
func (w *Workflow) Post(ctx context.Context, form PostForm) (*domain.Donation, error) {
	_, caps, err := w.viewer()
	if err != nil {
		return nil, err
	}
	if !caps.CanPost {
		return nil, fmt.Errorf("reservation: post: role cannot post: %w", domain.ErrForbidden)
	}
	loc := form.Location
	if loc == nil {
		loc = w.locator.CurrentLocation(ctx)
	}
	if loc == nil {
		def := w.fallback
		loc = &def
	}
	payload, err := form.Payload(*loc)
	if err != nil {
		return nil, err
	}
	created, err := w.api.CreateDonation(ctx, payload)
	if err != nil {
		w.logger.Error().Err(err).Msg("reservation: post failed")
		return nil, fmt.Errorf("reservation: post: %w", err)
	}
	w.reload(ctx, created.ID)
	return created, nil
}

// InFlight reports whether a write for id is running.
func (w *Workflow) InFlight(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inFlight[id]
	return ok
}

func (w *Workflow) run(ctx context.Context, id int64, action string, fn func(context.Context) error) error {
	if !w.begin(id) {
		return fmt.Errorf("reservation: %s %d: %w", action, id, domain.ErrActionInFlight)
	}
	defer w.end(id)

	if err := fn(ctx); err != nil {
		w.logger.Error().Err(err).Int64("donation_id", id).Str("action", action).Msg("reservation: write failed")
		return fmt.Errorf("reservation: %s %d: %w", action, id, err)
	}
	w.logger.Info().Int64("donation_id", id).Str("action", action).Msg("reservation: write succeeded")
	w.reload(ctx, id)
	return nil
}

// reload refreshes the list after a successful write. A failed reload is recorded in the
// discovery state and does not turn the write into a failure.
func (w *Workflow) reload(ctx context.Context, id int64) {
	if w.lists == nil {
		return
	}
	if _, err := w.lists.Reload(ctx); err != nil {
		w.logger.Warn().Err(err).Int64("donation_id", id).Msg("reservation: reload after write failed")
	}
}

func (w *Workflow) begin(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[id]; busy {
		return false
	}
	w.inFlight[id] = struct{}{}
	return true
}

func (w *Workflow) end(id int64) {
	w.mu.Lock()
	delete(w.inFlight, id)
	w.mu.Unlock()
}

func (w *Workflow) viewer() (domain.User, domain.Capabilities, error) {
	if w.session == nil {
		return domain.User{}, domain.Capabilities{}, domain.ErrNotSignedIn
	}
	sess := w.session.Current()
	if sess == nil || sess.Token == "" {
		return domain.User{}, domain.Capabilities{}, domain.ErrNotSignedIn
	}
	return sess.User, w.session.Capabilities(), nil
}

// IsConflict reports whether err means the donation changed under the viewer.
func IsConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound)
}
