package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"askida/internal/apiclient"
	"askida/internal/discovery"
	"askida/internal/domain"
	"askida/internal/geo"
	"askida/internal/reservation"
	"askida/internal/session"
)

type command struct {
	needsSession bool
	run          func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"register": {run: cmdRegister},
	"login":    {run: cmdLogin},
	"logout":   {run: cmdLogout},
	"me":       {needsSession: true, run: cmdMe},
	"list":     {needsSession: true, run: cmdList},
	"show":     {needsSession: true, run: cmdShow},
	"reserve":  {needsSession: true, run: cmdReserve},
	"cancel":   {needsSession: true, run: cmdCancel},
	"delete":   {needsSession: true, run: cmdDelete},
	"edit":     {needsSession: true, run: cmdEdit},
	"post":     {needsSession: true, run: cmdPost},
	"watch":    {run: cmdWatch},
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func cmdRegister(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("register")
	var req apiclient.RegisterRequest
	var role, confirm string
	var remember bool
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&confirm, "confirm", "", "password confirmation (defaults to -password)")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&role, "role", string(domain.RoleRecipient), "donor, recipient or shelter_volunteer")
	fs.BoolVar(&remember, "remember", true, "remember me")
	if err := fs.Parse(args); err != nil {
		return err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return err
	}
	req.Role = parsed
	if confirm == "" {
		confirm = req.Password
	}
	if err := session.ValidateRegistration(req, confirm); err != nil {
		return err
	}
	res, err := c.api.Register(ctx, req)
	if err != nil {
		return err
	}
	sess, err := c.manager.SignIn(ctx, res, remember)
	if err != nil {
		return err
	}
	return c.out.user(res.Message, sess.User)
}

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("login")
	var req apiclient.LoginRequest
	var remember bool
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.BoolVar(&remember, "remember", false, "remember me")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := session.ValidateLogin(req); err != nil {
		return err
	}
	res, err := c.api.Login(ctx, req)
	if err != nil {
		return err
	}
	sess, err := c.manager.SignIn(ctx, res, remember)
	if err != nil {
		return err
	}
	return c.out.user(res.Message, sess.User)
}

func cmdLogout(ctx context.Context, c *cli, _ []string) error {
	// Restore first so the server-side logout carries the stored token.
	if _, err := c.manager.Restore(ctx, c.api); err != nil && !errors.Is(err, domain.ErrNetwork) {
		c.logger.Debug().Err(err).Msg("restore before logout failed")
	}
	if err := c.manager.SignOut(ctx, c.api); err != nil {
		return err
	}
	return c.out.message("signed out")
}

func cmdMe(_ context.Context, c *cli, _ []string) error {
	sess := c.manager.Current()
	if sess == nil {
		return domain.ErrNotSignedIn
	}
	return c.out.user("", sess.User)
}

func cmdList(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("list")
	filter := fs.String("filter", string(discovery.FilterAll), "all, temiz, atik or reserved")
	refresh := fs.Bool("refresh", false, "pull-to-refresh: keep the last known location when a new fix fails")
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := discovery.ParseFilter(*filter)
	if err != nil {
		return err
	}

	load := c.lists.Load
	if *refresh {
		load = c.lists.Refresh
	}
	state, err := load(ctx)
	if err != nil {
		return err
	}
	if key != discovery.FilterAll {
		if state, err = c.lists.SetFilter(key); err != nil {
			return err
		}
	}
	return c.out.list(state, c.writes)
}

func cmdShow(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("show")
	id := fs.Int64("id", 0, "donation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := c.donation(ctx, *id)
	if err != nil {
		return err
	}
	if loc := c.locator.CurrentLocation(ctx); loc != nil {
		d = discovery.Enrich([]domain.Donation{d}, loc)[0]
	}
	return c.out.donation(d, c.writes.Controls(d))
}

func cmdReserve(ctx context.Context, c *cli, args []string) error {
	return withDonation(ctx, c, "reserve", args, func(d domain.Donation) (string, error) {
		return "reserved", c.writes.Reserve(ctx, d)
	})
}

func cmdCancel(ctx context.Context, c *cli, args []string) error {
	return withDonation(ctx, c, "cancel", args, func(d domain.Donation) (string, error) {
		return "reservation cancelled", c.writes.Cancel(ctx, d)
	})
}

func cmdDelete(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("delete")
	id := fs.Int64("id", 0, "donation id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := c.donation(ctx, *id)
	if err != nil {
		return err
	}
	confirm := reservation.ConfirmFunc(c.confirm)
	if *yes {
		confirm = func(context.Context, string) (bool, error) { return true, nil }
	}
	if err := c.writes.Delete(ctx, d, confirm); err != nil {
		if errors.Is(err, domain.ErrNotConfirmed) {
			return c.out.message("not deleted")
		}
		return err
	}
	return c.out.message(fmt.Sprintf("donation %d deleted", d.ID))
}

func cmdEdit(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("edit")
	id := fs.Int64("id", 0, "donation id")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	category := fs.String("category", "", "new category")
	quantity := fs.String("quantity", "", "new quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := c.donation(ctx, *id)
	if err != nil {
		return err
	}
	form := reservation.PrefillEdit(d)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			form.Title = *title
		case "description":
			form.Description = *description
		case "category":
			form.Category = *category
		case "quantity":
			form.Quantity = *quantity
		}
	})
	updated, err := c.writes.Edit(ctx, d, form)
	if err != nil {
		return err
	}
	return c.out.donation(*updated, c.writes.Controls(*updated))
}

func cmdPost(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("post")
	var form reservation.PostForm
	var lat, lng float64
	fs.StringVar(&form.Title, "title", "", "title")
	fs.StringVar(&form.Description, "description", "", "description")
	fs.StringVar(&form.Category, "category", string(domain.CategoryCleanFood), "temiz yemek or atık yemek")
	fs.StringVar(&form.Quantity, "quantity", "", "quantity")
	fs.StringVar(&form.ExpirationDate, "expires", "", "expiration date")
	fs.Float64Var(&lat, "lat", 0, "latitude (defaults to the current location)")
	fs.Float64Var(&lng, "lng", 0, "longitude (defaults to the current location)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lng" {
			form.Location = &geo.Coordinates{Latitude: lat, Longitude: lng}
		}
	})
	created, err := c.writes.Post(ctx, form)
	if err != nil {
		return err
	}
	return c.out.donation(*created, c.writes.Controls(*created))
}

func cmdWatch(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("watch")
	interval := fs.Duration("interval", 5*time.Second, "minimum time between updates")
	distance := fs.Float64("distance", 10, "minimum movement in meters between updates")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sub, err := c.locator.Watch(ctx, geo.WatchOptions{MinInterval: *interval, MinDistance: *distance}, func(fix geo.Coordinates) {
		if err := c.out.location(fix); err != nil {
			c.logger.Warn().Err(err).Msg("could not write location update")
		}
	})
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		sub.Stop()
		<-sub.Done()
	case <-sub.Done():
	}
	return nil
}

func withDonation(ctx context.Context, c *cli, name string, args []string, action func(domain.Donation) (string, error)) error {
	fs := newFlagSet(name)
	id := fs.Int64("id", 0, "donation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := c.donation(ctx, *id)
	if err != nil {
		return err
	}
	msg, err := action(d)
	if err != nil {
		return err
	}
	return c.out.message(fmt.Sprintf("donation %d %s", d.ID, msg))
}
