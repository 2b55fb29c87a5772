package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"askida/internal/domain"
	"askida/internal/infra"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 10 * time.Second
	userAgent      = "askida-cli/1.0"
)

// TokenSource yields the bearer token of the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, bool)

func (f TokenFunc) Token(ctx context.Context) (string, bool) { return f(ctx) }

// Options configures the API client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
	Tokens     TokenSource
}

// Client talks to the donation REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	tokens     TokenSource
}

// New constructs a client with a 10s request timeout unless an HTTP client is injected.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func(context.Context) (string, bool) { return "", false })
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger, tokens: tokens}
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the success wrapper used by every route.
type envelope struct {
	Status  any             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
	route  route
}

type route int

const (
	routeDefault route = iota
	routeReservation
)

// do performs a request and returns the decoded envelope. The envelope's Data falls back to the
// raw body when the response is not wrapped.
func (c *Client) do(ctx context.Context, in call) (*envelope, error) {
	endpoint := c.baseURL + in.path
	if len(in.query) > 0 {
		endpoint += "?" + in.query.Encode()
	}

	var reader io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if token, ok := c.tokens.Token(ctx); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if in.auth {
		return nil, domain.ErrNotSignedIn
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", in.method).
			Str("path", in.path).
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Msg("apiclient: request failed")
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, fmt.Errorf("apiclient: %s %s: %w", in.method, in.path, ctx.Err())
		}
		return nil, fmt.Errorf("apiclient: %s %s: %w: %w", in.method, in.path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: read response: %w: %w", domain.ErrNetwork, err)
	}

	c.logger.Debug().
		Str("method", in.method).
		Str("path", in.path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("duration", time.Since(start)).
		Msg("apiclient: request")

	if resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, raw, in.route)
	}
	return decodeEnvelope(raw), nil
}

func decodeEnvelope(raw []byte) *envelope {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &envelope{}
	}
	var env envelope
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 {
			return &env
		}
	}
	env.Data = json.RawMessage(trimmed)
	return &env
}

func decodeInto(env *envelope, out any, what string) error {
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return fmt.Errorf("apiclient: decode %s: empty response", what)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", what, err)
	}
	return nil
}
