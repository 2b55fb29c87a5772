package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"askida/internal/apiclient"
	"askida/internal/discovery"
	"askida/internal/domain"
	"askida/internal/geo"
	"askida/internal/infra"
	"askida/internal/reservation"
	"askida/internal/session"
)

// cli bundles the wired workflows for a single command invocation.
type cli struct {
	cfg     *infra.Config
	logger  infra.Logger
	stdin   *bufio.Reader
	out     *printer
	manager *session.Manager
	api     *apiclient.Client
	locator *geo.Accessor
	lists   *discovery.Workflow
	writes  *reservation.Workflow
	closers []func()
}

func newCLI(ctx context.Context, cfg *infra.Config, stdin io.Reader, stdout, stderr io.Writer, asJSON bool) (*cli, error) {
	logger := infra.NewLoggerTo(cfg.AppEnv, stderr).With().Str("cmd", "askida").Logger()

	kv, closeKV, err := session.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	c := &cli{
		cfg:     cfg,
		logger:  logger,
		stdin:   bufio.NewReader(stdin),
		out:     &printer{w: stdout, json: asJSON},
		closers: []func(){closeKV},
	}
	c.manager = session.NewManager(session.NewStore(kv), &c.logger)
	c.api = apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  &c.logger,
		Tokens:  c.manager,
	})

	provider, closeProvider, err := locationProvider(cfg)
	if err != nil {
		c.close()
		return nil, err
	}
	c.closers = append(c.closers, closeProvider)
	c.locator = geo.NewAccessor(provider, geo.StaticPermission(cfg.LocationPermission), &c.logger)

	fallback := geo.Coordinates{Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude}
	c.lists = discovery.New(discovery.Options{
		Session:  c.manager,
		Locator:  c.locator,
		API:      c.api,
		Default:  fallback,
		RadiusKm: cfg.SearchRadiusKm,
		Logger:   &c.logger,
	})
	c.writes = reservation.New(reservation.Options{
		Session: c.manager,
		API:     c.api,
		Lists:   c.lists,
		Locator: c.locator,
		Default: fallback,
		Logger:  &c.logger,
	})
	return c, nil
}

func locationProvider(cfg *infra.Config) (geo.Provider, func(), error) {
	noop := func() {}
	switch cfg.LocationSource {
	case "static":
		return geo.StaticProvider{Fix: geo.Coordinates{Latitude: cfg.LocationLatitude, Longitude: cfg.LocationLongitude}}, noop, nil
	case "geoip":
		p, err := geo.NewGeoIPProvider(cfg.GeoIPDBPath, cfg.GeoIPLookupIP)
		if err != nil {
			return nil, noop, err
		}
		if p == nil {
			return geo.UnavailableProvider{}, noop, nil
		}
		return p, func() { _ = p.Close() }, nil
	default:
		return geo.UnavailableProvider{}, noop, nil
	}
}

func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// restore validates the stored session. A rejected token clears it; an unreachable server keeps it.
func (c *cli) restore(ctx context.Context) error {
	sess, err := c.manager.Restore(ctx, c.api)
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) && sess != nil {
			c.logger.Warn().Err(err).Msg("could not validate session, continuing offline")
			return nil
		}
		return err
	}
	if sess == nil {
		return domain.ErrNotSignedIn
	}
	return nil
}

func (c *cli) confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.out.prompt(prompt + " [y/N] ")
	line, err := c.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "e", "evet":
		return true, nil
	}
	return false, nil
}

// donation loads the current server copy of a donation.
func (c *cli) donation(ctx context.Context, id int64) (domain.Donation, error) {
	if id <= 0 {
		return domain.Donation{}, domain.Invalid("id", "a donation id is required")
	}
	d, err := c.api.GetDonation(ctx, id)
	if err != nil {
		return domain.Donation{}, err
	}
	return *d, nil
}
