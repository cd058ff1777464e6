package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080".
	BaseURL string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
	// Session defaults to a fresh, signed-out session.
	Session *Session
	// Location interprets departure dates and times.
	Location *time.Location
	// MinAmount is the smallest payable total; it defaults to 1 and should
	// match the server's PAYMENT_MIN_AMOUNT.
	MinAmount int64
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Client drives the API on behalf of one dashboard user. Inputs that the
// API would reject are checked locally first so no request is sent. Book,
// Pay and Decide share one Guard: while one of them is in flight the others
// return ErrBusy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	loc        *time.Location
	minAmount  int64
	clock      clock.Clock
	logger     *slog.Logger
	guard      Guard
}

func NewClient(cfg Config) (*Client, error) {
	const op = "dashboard.NewClient"

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, cfg.BaseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		session:    cfg.Session,
		loc:        cfg.Location,
		minAmount:  cfg.MinAmount,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.session == nil {
		c.session = &Session{}
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.minAmount <= 0 {
		c.minAmount = 1
	}
	if c.clock == nil {
		c.clock = clock.Real(c.loc)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

// Busy reports whether a Book, Pay or Decide is in flight.
func (c *Client) Busy() bool {
	return c.guard.Busy()
}

type errorBody struct {
	Error string `json:"error"`
}

type request struct {
	method string
	path   string
	body   any
	// idempotent requests carry a fresh Idempotency-Key.
	idempotent bool
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	raw, err := c.doRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if req.idempotent {
		httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.method, req.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}

		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}

		if apiErr.SessionEnded() && c.session.Active() {
			c.logger.Info("session ended by server",
				slog.String("email", c.session.Email()),
				slog.Int("status", apiErr.Status),
			)
			c.session.Clear()
		}
		return nil, apiErr
	}

	return raw, nil
}

func (c *Client) requireSession() error {
	if !c.session.Active() {
		return ErrNotLoggedIn
	}
	return nil
}

// Register creates the account if it does not exist yet.
func (c *Client) Register(ctx context.Context, email, name, photoURL string) error {
	const op = "dashboard.Client.Register"

	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/users",
		body:   map[string]string{"email": email, "name": name, "photoURL": photoURL},
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Login exchanges the identity provider's ID token for email for a session
// token and loads the account's role.
func (c *Client) Login(ctx context.Context, email, idToken string) error {
	const op = "dashboard.Client.Login"

	var tok struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/jwt", body: map[string]string{"email": email, "idToken": idToken}}, &tok)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.session.set(tok.Token, email, "")
	if _, err := c.RefreshRole(ctx); err != nil {
		c.session.Clear()
		return fmt.Errorf("%s: %w", op, err)
	}

	c.logger.Info("logged in", slog.String("email", email), slog.String("role", string(c.session.Role())))
	return nil
}

// RefreshRole reloads the signed-in account's role, which an admin may have
// changed since login.
func (c *Client) RefreshRole(ctx context.Context) (domain.Role, error) {
	const op = "dashboard.Client.RefreshRole"

	if err := c.requireSession(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var out struct {
		Role domain.Role `json:"role"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/" + url.PathEscape(c.session.Email())}, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.session.setRole(out.Role)
	return out.Role, nil
}

func (c *Client) Logout() {
	c.session.Clear()
}

// departed reports whether a departure has passed. Unparseable values count
// as departed so the pay control stays disabled.
func (c *Client) departed(date, clock string) bool {
	at, err := domain.ParseDeparture(date, clock, c.loc)
	if err != nil {
		return true
	}
	return !at.After(c.clock.Now())
}
