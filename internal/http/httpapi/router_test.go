package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"askida/internal/http/handlers"
	"askida/internal/infra"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	cfg := &infra.ServerConfig{
		JWTSecret:          "router-secret",
		TokenTTL:           time.Hour,
		DefaultRadiusKm:    5,
		RateLimitPerMin:    rateLimit,
		CORSAllowedOrigins: []string{"http://localhost:19006"},
	}
	app := handlers.NewApp(cfg, nil)
	app.BcryptCost = bcrypt.MinCost
	srv := httptest.NewServer(NewRouter(app, cfg))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.srv.Client().Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (s *testServer) register(email, role string) (string, int64) {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"full_name": "Test " + role, "email": email, "password": "secret1", "user_type": role,
	})
	if status != http.StatusCreated {
		s.t.Fatalf("register %s status = %d (%v)", email, status, body)
	}
	data := body["data"].(map[string]any)
	return body["token"].(string), int64(data["id"].(float64))
}

func detailMessage(body map[string]any) string {
	detail, _ := body["detail"].(map[string]any)
	msg, _ := detail["message"].(string)
	return msg
}

func TestDonationLifecycle(t *testing.T) {
	s := newTestServer(t, 0)
	donor, donorID := s.register("donor@example.com", "donor")
	recipient, recipientID := s.register("recipient@example.com", "recipient")
	other, _ := s.register("other@example.com", "recipient")

	status, body := s.do(http.MethodPost, "/donations", recipient, map[string]any{
		"title": "Çorba", "description": "Sıcak çorba", "category": "temiz yemek", "latitude": 41.01, "longitude": 28.98,
	})
	if status != http.StatusForbidden {
		t.Fatalf("recipient create status = %d", status)
	}

	status, body = s.do(http.MethodPost, "/donations", donor, map[string]any{
		"title": "Çorba", "description": "Sıcak çorba", "category": "Temiz Yemek", "latitude": 41.01, "longitude": 28.98,
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d (%v)", status, body)
	}
	data := body["data"].(map[string]any)
	id := int64(data["id"].(float64))
	if data["category"] != "temiz yemek" || int64(data["donor_id"].(float64)) != donorID {
		t.Fatalf("created donation = %v", data)
	}
	path := fmt.Sprintf("/donations/%d", id)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		msg    string
	}{
		{name: "anonymous write", method: http.MethodPost, path: path + "/reserve", status: http.StatusUnauthorized},
		{name: "stranger patch", method: http.MethodPatch, path: path, token: recipient, body: map[string]string{"title": "x"}, status: http.StatusForbidden, msg: "Bu bağışı sadece oluşturan kullanıcı güncelleyebilir."},
		{name: "owner patch", method: http.MethodPatch, path: path, token: donor, body: map[string]string{"quantity": "3 kase"}, status: http.StatusOK},
		{name: "donor reserves own", method: http.MethodPost, path: path + "/reserve", token: donor, status: http.StatusForbidden},
		{name: "cancel unreserved", method: http.MethodPost, path: path + "/cancel_reservation", token: recipient, status: http.StatusConflict},
		{name: "reserve", method: http.MethodPost, path: path + "/reserve", token: recipient, status: http.StatusOK},
		{name: "reserve taken", method: http.MethodPost, path: path + "/reserve", token: other, status: http.StatusConflict, msg: "Bu bağış zaten rezerve edilmiş."},
		{name: "stranger cancel", method: http.MethodPost, path: path + "/cancel_reservation", token: other, status: http.StatusForbidden},
		{name: "reserver cancel", method: http.MethodPost, path: path + "/cancel_reservation", token: recipient, status: http.StatusOK},
		{name: "stranger delete", method: http.MethodDelete, path: path, token: other, status: http.StatusForbidden, msg: "Bu bağışı sadece oluşturan kullanıcı silebilir."},
		{name: "owner delete", method: http.MethodDelete, path: path, token: donor, status: http.StatusNoContent},
		{name: "gone", method: http.MethodGet, path: path, status: http.StatusNotFound, msg: "Bağış bulunamadı."},
		{name: "bad id", method: http.MethodGet, path: "/donations/abc", status: http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(tc.method, tc.path, tc.token, tc.body)
			if status != tc.status {
				t.Fatalf("status = %d, want %d (%v)", status, tc.status, body)
			}
			if tc.msg != "" && detailMessage(body) != tc.msg {
				t.Fatalf("message = %q, want %q", detailMessage(body), tc.msg)
			}
			if tc.name == "reserve" {
				data := body["data"].(map[string]any)
				if data["is_reserved"] != true || int64(data["reserved_by"].(float64)) != recipientID {
					t.Fatalf("reserved donation = %v", data)
				}
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, 0)
	token, _ := s.register("a@example.com", "donor")

	if status, _ := s.do(http.MethodGet, "/auth/me", token, nil); status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	if status, _ := s.do(http.MethodPost, "/auth/logout", token, nil); status != http.StatusOK {
		t.Fatalf("logout status = %d", status)
	}
	if status, _ := s.do(http.MethodGet, "/auth/me", token, nil); status != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d, want 401", status)
	}
}

func TestAuthRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		if status, _ := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "x@example.com", "password": "secret1"}); status != http.StatusNotFound {
			t.Fatalf("login %d status = %d", i, status)
		}
	}
	status, body := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "x@example.com", "password": "secret1"})
	if status != http.StatusTooManyRequests || detailMessage(body) == "" {
		t.Fatalf("third login status = %d (%v)", status, body)
	}
	if status, _ := s.do(http.MethodGet, "/donations", "", nil); status != http.StatusOK {
		t.Fatalf("donations should not be rate limited, status = %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, 0)
	req, _ := http.NewRequest(http.MethodOptions, s.srv.URL+"/donations", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := s.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:19006" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
