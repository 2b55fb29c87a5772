package reservation

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"askida/internal/apiclient"
	"askida/internal/discovery"
	"askida/internal/domain"
	"askida/internal/geo"
	"askida/internal/http/handlers"
	"askida/internal/http/httpapi"
	"askida/internal/infra"
	"askida/internal/session"
)

var istanbul = geo.Coordinates{Latitude: 41.0082, Longitude: 28.9784}

type client struct {
	manager   *session.Manager
	api       *apiclient.Client
	discovery *discovery.Workflow
	writes    *Workflow
}

func startAPI(t *testing.T) string {
	t.Helper()
	cfg := &infra.ServerConfig{JWTSecret: "integration-secret", TokenTTL: time.Hour, DefaultRadiusKm: 5}
	app := handlers.NewApp(cfg, nil)
	app.BcryptCost = bcrypt.MinCost
	srv := httptest.NewServer(httpapi.NewRouter(app, cfg))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newClient(t *testing.T, baseURL, email string, role domain.Role) *client {
	t.Helper()
	ctx := context.Background()
	manager := session.NewManager(session.NewStore(session.NewMemoryKV()), nil)
	api := apiclient.New(apiclient.Options{BaseURL: baseURL, Tokens: manager})
	res, err := api.Register(ctx, apiclient.RegisterRequest{
		FullName: "Test User", Email: email, Password: "secret1", PhoneNumber: "05551234567", Role: role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if _, err := manager.SignIn(ctx, res, true); err != nil {
		t.Fatalf("sign in %s: %v", email, err)
	}
	disc := discovery.New(discovery.Options{
		Session: manager,
		Locator: fixedLocator{loc: &istanbul},
		API:     api,
		Default: istanbul,
	})
	writes := New(Options{Session: manager, API: api, Lists: disc, Default: istanbul})
	return &client{manager: manager, api: api, discovery: disc, writes: writes}
}

func TestConcurrentReservesFromTwoSessions(t *testing.T) {
	baseURL := startAPI(t)
	ctx := context.Background()

	donor := newClient(t, baseURL, "donor@example.com", domain.RoleDonor)
	created, err := donor.writes.Post(ctx, PostForm{
		Title:       "Pide",
		Description: "Fırından yeni çıktı, 6 adet",
		Location:    &geo.Coordinates{Latitude: 41.0100, Longitude: 28.9800},
	})
	if err != nil {
		t.Fatalf("Post() error: %v", err)
	}

	a := newClient(t, baseURL, "a@example.com", domain.RoleRecipient)
	b := newClient(t, baseURL, "b@example.com", domain.RoleRecipient)
	clients := []*client{a, b}

	var target domain.Donation
	for _, c := range clients {
		state, err := c.discovery.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		found, ok := findDonation(state.Displayed, created.ID)
		if !ok {
			t.Fatalf("created donation missing from %d displayed rows", len(state.Displayed))
		}
		target = found
	}

	errs := make([]error, len(clients))
	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c *client) {
			defer wg.Done()
			errs[i] = c.writes.Reserve(ctx, target)
		}(i, c)
	}
	wg.Wait()

	winners := 0
	winner := -1
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			winner = i
		case IsConflict(err):
			var apiErr *apiclient.APIError
			if !errors.As(err, &apiErr) || apiclient.UserMessage(err) == "" {
				t.Fatalf("loser error should carry the server message, got %v", err)
			}
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
		if clients[i].writes.InFlight(target.ID) {
			t.Fatalf("client %d still has the donation in flight", i)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1 (errors %v)", winners, errs)
	}

	winnerID := clients[winner].manager.Current().User.ID
	for _, c := range clients {
		state, err := c.discovery.Refresh(ctx)
		if err != nil {
			t.Fatalf("Refresh() error: %v", err)
		}
		got, ok := findDonation(state.All, target.ID)
		if !ok || !got.IsReserved || got.ReservedBy == nil || *got.ReservedBy != winnerID {
			t.Fatalf("refreshed donation = %+v, want reserved by %d", got, winnerID)
		}
	}
}

func TestCancelThenLogout(t *testing.T) {
	baseURL := startAPI(t)
	ctx := context.Background()

	donor := newClient(t, baseURL, "donor@example.com", domain.RoleDonor)
	created, err := donor.writes.Post(ctx, PostForm{Title: "Meyve", Description: "Bir kasa elma ve armut"})
	if err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	recipient := newClient(t, baseURL, "r@example.com", domain.RoleRecipient)
	state, err := recipient.discovery.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	d, ok := findDonation(state.Displayed, created.ID)
	if !ok {
		t.Fatalf("donation %d not displayed", created.ID)
	}
	if err := recipient.writes.Reserve(ctx, d); err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}

	state, err = donor.discovery.Load(ctx)
	if err != nil {
		t.Fatalf("donor Load() error: %v", err)
	}
	d, _ = findDonation(state.All, created.ID)
	if c := donor.writes.Controls(d); c.Cancel || c.Reserve || !c.ReservedBadge {
		t.Fatalf("donor controls on reserved own donation = %+v", c)
	}
	if err := donor.writes.Cancel(ctx, d); err != nil {
		t.Fatalf("donor Cancel() error: %v", err)
	}
	got, err := donor.api.GetDonation(ctx, created.ID)
	if err != nil || got.IsReserved {
		t.Fatalf("after cancel: %+v, %v", got, err)
	}

	if err := recipient.manager.SignOut(ctx, recipient.api); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	if _, ok := recipient.manager.Token(ctx); ok {
		t.Fatalf("token should be cleared after sign out")
	}
	if _, err := recipient.discovery.Load(ctx); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Fatalf("Load() after sign out error = %v, want ErrNotSignedIn", err)
	}
}

func findDonation(list []domain.Donation, id int64) (domain.Donation, bool) {
	for _, d := range list {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Donation{}, false
}
