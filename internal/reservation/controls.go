package reservation

import "askida/internal/domain"

// Controls is the per-row set of actions a view renders for one donation.
type Controls struct {
	Reserve       bool
	Cancel        bool
	Edit          bool
	Delete        bool
	ReservedBadge bool
	// Disabled is set while a write for this donation is in flight.
	Disabled bool
}

// Controls derives the row controls from the viewer's role, ownership and in-flight state.
// Reserve and cancel are only offered to reserving roles; a donor can still cancel through
// Cancel but gets no row control for it. Edit and delete appear for donors on their own
// donations, or on rows whose owner the server did not disclose. The reserved badge is hidden
// from the user holding the reservation.
func (w *Workflow) Controls(d domain.Donation) Controls {
	c := Controls{ReservedBadge: d.IsReserved, Disabled: w.InFlight(d.ID)}
	viewer, caps, err := w.viewer()
	if err != nil {
		return c
	}
	c.ReservedBadge = d.IsReserved && !d.ReservedByUser(viewer.ID)
	c.Reserve = caps.CanReserve && d.Available() && !d.OwnedBy(viewer.ID)
	c.Cancel = caps.CanReserve && d.CanCancel(viewer.ID)
	if caps.CanEditOwn && (d.DonorID == nil || d.OwnedBy(viewer.ID)) {
		c.Edit = true
		c.Delete = true
	}
	return c
}
