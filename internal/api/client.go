// Package api is the HTTP client for the remote events resource and its
// token endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nixlim/evman/internal/events"
	"github.com/nixlim/evman/internal/session"
)

const (
	EventsEndpoint = "events"
	LoginEndpoint  = "auth/local"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 4 << 20
)

// Credentials are posted to the login endpoint.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
	now     func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger records every request to l.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:1337/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  NopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

type writeEnvelope struct {
	Data events.Attributes `json:"data"`
}

type listEnvelope struct {
	Data *[]events.Event `json:"data"`
}

type itemEnvelope struct {
	Data *events.Event `json:"data"`
}

type loginEnvelope struct {
	JWT string `json:"jwt"`
}

// ListEvents fetches the full collection. The endpoint is public.
func (c *Client) ListEvents(ctx context.Context) ([]events.Event, error) {
	var env listEnvelope
	if err := c.sendRequest(ctx, http.MethodGet, EventsEndpoint, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("listing events: %w: missing data", ErrMalformedResponse)
	}
	return *env.Data, nil
}

// CreateEvent posts attrs as a new event and returns the server's copy.
func (c *Client) CreateEvent(ctx context.Context, sess session.Session, attrs events.Attributes) (events.Event, error) {
	var env itemEnvelope
	err := c.sendRequest(ctx, http.MethodPost, EventsEndpoint, &sess, writeEnvelope{Data: attrs}, &env)
	if err != nil {
		return events.Event{}, err
	}
	if env.Data == nil {
		return events.Event{}, fmt.Errorf("creating event: %w: missing data", ErrMalformedResponse)
	}
	return *env.Data, nil
}

// UpdateEvent replaces the attributes of event id.
func (c *Client) UpdateEvent(ctx context.Context, sess session.Session, id events.ID, attrs events.Attributes) (events.Event, error) {
	var env itemEnvelope
	err := c.sendRequest(ctx, http.MethodPut, eventPath(id), &sess, writeEnvelope{Data: attrs}, &env)
	if err != nil {
		return events.Event{}, err
	}
	if env.Data == nil {
		return events.Event{}, fmt.Errorf("updating event %s: %w: missing data", id, ErrMalformedResponse)
	}
	return *env.Data, nil
}

// DeleteEvent removes event id. Any response body is ignored.
func (c *Client) DeleteEvent(ctx context.Context, sess session.Session, id events.ID) error {
	return c.sendRequest(ctx, http.MethodDelete, eventPath(id), &sess, nil, nil)
}

// Login exchanges creds for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var env loginEnvelope
	if err := c.sendRequest(ctx, http.MethodPost, LoginEndpoint, nil, creds, &env); err != nil {
		return "", err
	}
	if env.JWT == "" {
		return "", fmt.Errorf("logging in: %w: missing jwt", ErrMalformedResponse)
	}
	return env.JWT, nil
}

func eventPath(id events.ID) string {
	return EventsEndpoint + "/" + url.PathEscape(id.String())
}

// sendRequest performs one JSON exchange. sess, when non-nil, supplies the
// Authorization header. dst may be nil, in which case the body is drained
// and discarded.
func (c *Client) sendRequest(
	ctx context.Context,
	method string,
	endpoint string,
	sess *session.Session,
	body any,
	dst any,
) (err error) {
	start := c.now()
	status := 0
	defer func() {
		c.logger.LogRequest(RequestRecord{
			Method:   method,
			Path:     "/" + endpoint,
			Status:   status,
			Duration: c.now().Sub(start),
			Err:      err,
			At:       start,
		})
	}()

	u, err := url.Parse(fmt.Sprintf("%s/%s", c.baseURL, endpoint))
	if err != nil {
		return fmt.Errorf("building URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		marshalled, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(marshalled)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if sess != nil {
		req.Header.Set("Authorization", sess.Bearer())
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s /%s: %w", method, endpoint, err)
	}
	defer res.Body.Close()
	status = res.StatusCode

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s /%s: reading response: %w", method, endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		se := &StatusError{Method: method, Path: "/" + endpoint, StatusCode: res.StatusCode}
		var ee errorEnvelope
		if json.Unmarshal(data, &ee) == nil && ee.Error != nil {
			se.Message = ee.Error.Message
		}
		return se
	}

	if dst == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s /%s: %w: empty body", method, endpoint, ErrMalformedResponse)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%s /%s: %w: %v", method, endpoint, ErrMalformedResponse, err)
	}
	return nil
}
