package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"askida/internal/discovery"
	"askida/internal/domain"
	"askida/internal/geo"
	"askida/internal/reservation"
)

// printer renders command results as plain text or, with -json, one JSON document per result.
type printer struct {
	w    io.Writer
	json bool
}

type donationView struct {
	domain.Donation
	Controls reservation.Controls `json:"controls"`
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) prompt(text string) {
	fmt.Fprint(p.w, text)
}

func (p *printer) message(msg string) error {
	if p.json {
		return p.encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p *printer) user(msg string, u domain.User) error {
	if p.json {
		return p.encode(map[string]any{"message": msg, "user": u})
	}
	if msg != "" {
		fmt.Fprintln(p.w, msg)
	}
	_, err := fmt.Fprintf(p.w, "%s <%s> (%s, id %d)\n", u.FullName, u.Email, u.Role, u.ID)
	return err
}

func (p *printer) location(c geo.Coordinates) error {
	if p.json {
		return p.encode(c)
	}
	_, err := fmt.Fprintf(p.w, "%.6f, %.6f\n", c.Latitude, c.Longitude)
	return err
}

func (p *printer) donation(d domain.Donation, controls reservation.Controls) error {
	if p.json {
		return p.encode(donationView{Donation: d, Controls: controls})
	}
	_, err := fmt.Fprintln(p.w, formatRow(d, controls))
	if err != nil {
		return err
	}
	if d.Description != "" {
		_, err = fmt.Fprintf(p.w, "    %s\n", d.Description)
	}
	return err
}

func (p *printer) list(state discovery.State, writes *reservation.Workflow) error {
	if p.json {
		rows := make([]donationView, 0, len(state.Displayed))
		for _, d := range state.Displayed {
			rows = append(rows, donationView{Donation: d, Controls: writes.Controls(d)})
		}
		return p.encode(map[string]any{
			"filter":        state.Filter,
			"location":      state.Location,
			"using_default": state.UsingDefault,
			"donations":     rows,
		})
	}
	if state.Location != nil {
		origin := "current location"
		if state.UsingDefault {
			origin = "default location"
		}
		fmt.Fprintf(p.w, "near %.4f, %.4f (%s), filter %s\n", state.Location.Latitude, state.Location.Longitude, origin, state.Filter)
	}
	if len(state.Displayed) == 0 {
		_, err := fmt.Fprintln(p.w, "no donations found")
		return err
	}
	for _, d := range state.Displayed {
		if _, err := fmt.Fprintln(p.w, formatRow(d, writes.Controls(d))); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(d domain.Donation, c reservation.Controls) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-4d %-12s %-9s %s", d.ID, d.Category, formatDistance(d.Distance), d.Title)
	if d.Quantity != nil && *d.Quantity != "" {
		fmt.Fprintf(&b, " (%s)", *d.Quantity)
	}
	if c.ReservedBadge {
		b.WriteString(" [reserved]")
	}
	var actions []string
	if c.Reserve {
		actions = append(actions, "reserve")
	}
	if c.Cancel {
		actions = append(actions, "cancel")
	}
	if c.Edit {
		actions = append(actions, "edit")
	}
	if c.Delete {
		actions = append(actions, "delete")
	}
	if len(actions) > 0 {
		fmt.Fprintf(&b, " {%s}", strings.Join(actions, ","))
	}
	return b.String()
}

func formatDistance(meters *float64) string {
	switch {
	case meters == nil:
		return "-"
	case *meters < 1000:
		return fmt.Sprintf("%.0f m", *meters)
	default:
		return fmt.Sprintf("%.1f km", *meters/1000)
	}
}
