package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixlim/evman/internal/events"
	"github.com/nixlim/evman/internal/session"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	CType  string
	Body   string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

// newTestServer serves a fixed status and body and records what it got.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			CType:  r.Header.Get("Content-Type"),
			Body:   string(b),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestListEvents(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK,
		`{"data":[{"id":1,"attributes":{"name":"A","description":"d1"}},{"id":2,"attributes":{"name":"B","description":"d2"}}],"meta":{}}`)
	c := New(srv.URL + "/api")

	got, err := c.ListEvents(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, events.ID("1"), got[0].ID)
	assert.Equal(t, "B", got[1].Attributes.Name)

	require.Len(t, reqs.all(), 1)
	assert.Equal(t, http.MethodGet, reqs.all()[0].Method)
	assert.Equal(t, "/api/events", reqs.all()[0].Path)
	assert.Empty(t, reqs.all()[0].Auth, "list is public and sends no credential")
}

func TestListEvents_EmptyData(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"data":[]}`)

	got, err := New(srv.URL).ListEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListEvents_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing data", body: `{"meta":{}}`},
		{name: "null data", body: `{"data":null}`},
		{name: "not json", body: `<html>`},
		{name: "empty body", body: ``},
		{name: "wrong shape", body: `{"data":{"id":1}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, http.StatusOK, tc.body)

			_, err := New(srv.URL).ListEvents(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestCreateEvent(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK,
		`{"data":{"id":3,"attributes":{"name":"New","description":"Desc"}}}`)
	c := New(srv.URL)

	got, err := c.CreateEvent(context.Background(), session.New("jwt-1"),
		events.Attributes{Name: "New", Description: "Desc"})
	require.NoError(t, err)

	assert.Equal(t, events.ID("3"), got.ID)
	assert.Equal(t, "New", got.Attributes.Name)

	r := reqs.all()[0]
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "/events", r.Path)
	assert.Equal(t, "Bearer jwt-1", r.Auth)
	assert.Equal(t, "application/json", r.CType)
	assert.JSONEq(t, `{"data":{"name":"New","description":"Desc"}}`, r.Body)
}

func TestCreateEvent_AnonymousSendsBearerNull(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusForbidden,
		`{"data":null,"error":{"status":403,"name":"ForbiddenError","message":"Forbidden"}}`)

	_, err := New(srv.URL).CreateEvent(context.Background(), session.Anonymous(),
		events.Attributes{Name: "x"})
	require.Error(t, err)

	require.Len(t, reqs.all(), 1, "request must still be attempted without a token")
	assert.Equal(t, "Bearer null", reqs.all()[0].Auth)
	assert.True(t, IsUnauthorized(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Forbidden", se.Message)
}

func TestUpdateEvent(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK,
		`{"data":{"id":1,"attributes":{"name":"B","description":"d1"}}}`)

	got, err := New(srv.URL).UpdateEvent(context.Background(), session.New("t"), "1",
		events.Attributes{Name: "B", Description: "d1"})
	require.NoError(t, err)
	assert.Equal(t, "B", got.Attributes.Name)

	r := reqs.all()[0]
	assert.Equal(t, http.MethodPut, r.Method)
	assert.Equal(t, "/events/1", r.Path)
	assert.JSONEq(t, `{"data":{"name":"B","description":"d1"}}`, r.Body)
}

func TestUpdateEvent_EscapesID(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK,
		`{"data":{"id":"a/b","attributes":{"name":"n","description":""}}}`)

	_, err := New(srv.URL).UpdateEvent(context.Background(), session.New("t"), "a/b", events.Attributes{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "/events/a/b", reqs.all()[0].Path, "decoded path")
}

func TestDeleteEvent(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, ``)

	err := New(srv.URL).DeleteEvent(context.Background(), session.New("t"), "5")
	require.NoError(t, err, "an empty delete body is fine")

	r := reqs.all()[0]
	assert.Equal(t, http.MethodDelete, r.Method)
	assert.Equal(t, "/events/5", r.Path)
	assert.Equal(t, "Bearer t", r.Auth)
	assert.Empty(t, r.CType)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":{"status":404,"message":"Not Found"}}`)

	err := New(srv.URL).DeleteEvent(context.Background(), session.New("t"), "5")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.False(t, IsUnauthorized(err))
}

func TestLogin(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"jwt":"token-xyz","user":{"id":1}}`)

	tok, err := New(srv.URL).Login(context.Background(), Credentials{Identifier: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "token-xyz", tok)

	r := reqs.all()[0]
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "/auth/local", r.Path)
	assert.Empty(t, r.Auth)
	assert.JSONEq(t, `{"identifier":"user@example.com","password":"password"}`, r.Body)
}

func TestLogin_MissingJWT(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"user":{}}`)

	_, err := New(srv.URL).Login(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest,
		`{"error":{"status":400,"name":"ValidationError","message":"Invalid identifier or password"}}`)

	_, err := New(srv.URL).Login(context.Background(), Credentials{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid identifier or password")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListEvents(context.Background())
	require.Error(t, err)

	var se *StatusError
	assert.False(t, errors.As(err, &se), "transport errors carry no status")
}

func TestContextCancelled(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"data":[]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).ListEvents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reqs.all())
}

func TestTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).ListEvents(context.Background())
	require.Error(t, err)
}

type captureLogger struct{ records []RequestRecord }

func (c *captureLogger) LogRequest(r RequestRecord) { c.records = append(c.records, r) }

func TestClient_LogsRequests(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{}`)
	logger := &captureLogger{}

	_, _ = New(srv.URL, WithLogger(logger)).ListEvents(context.Background())

	require.Len(t, logger.records, 1)
	rec := logger.records[0]
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/events", rec.Path)
	assert.Equal(t, http.StatusInternalServerError, rec.Status)
	assert.Error(t, rec.Err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:1337/api/")
	assert.Equal(t, "http://localhost:1337/api", c.BaseURL())
}

func TestWriteEnvelopeShape(t *testing.T) {
	b, err := json.Marshal(writeEnvelope{Data: events.Attributes{Name: "B", Description: "d1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"name":"B","description":"d1"}}`, string(b))
}
