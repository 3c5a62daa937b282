package manager

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/nixlim/evman/internal/api"
	"github.com/nixlim/evman/internal/events"
)

type apiRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// fakeAPI is an in-memory stand-in for the events API.
type fakeAPI struct {
	mu       sync.Mutex
	events   []events.Event
	nextID   int
	jwt      string
	failWith map[string]int // pattern -> status
	requests []apiRequest
}

func newFakeAPI(t *testing.T, seed ...events.Event) (*fakeAPI, *api.Client) {
	t.Helper()
	f := &fakeAPI{
		events:   append([]events.Event(nil), seed...),
		nextID:   len(seed) + 1,
		jwt:      "jwt-fake",
		failWith: make(map[string]int),
	}

	mux := http.NewServeMux()
	f.handle(mux, "GET /events", f.list)
	f.handle(mux, "POST /events", f.create)
	f.handle(mux, "PUT /events/{id}", f.update)
	f.handle(mux, "DELETE /events/{id}", f.remove)
	f.handle(mux, "POST /auth/local", f.login)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, api.New(srv.URL)
}

func (f *fakeAPI) handle(mux *http.ServeMux, pattern string, h func(w http.ResponseWriter, r *http.Request, body []byte)) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		defer f.mu.Unlock()

		f.requests = append(f.requests, apiRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		if status, ok := f.failWith[pattern]; ok {
			writeJSON(w, status, map[string]any{"data": nil, "error": map[string]any{"status": status, "message": "injected"}})
			return
		}
		h(w, r, body)
	})
}

func (f *fakeAPI) fail(pattern string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith[pattern] = status
}

func (f *fakeAPI) recorded() []apiRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiRequest(nil), f.requests...)
}

func (f *fakeAPI) lastRequest() apiRequest {
	reqs := f.recorded()
	if len(reqs) == 0 {
		return apiRequest{}
	}
	return reqs[len(reqs)-1]
}

func (f *fakeAPI) list(w http.ResponseWriter, _ *http.Request, _ []byte) {
	writeJSON(w, http.StatusOK, map[string]any{"data": f.events, "meta": map[string]any{}})
}

func (f *fakeAPI) create(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		Data events.Attributes `json:"data"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": err.Error()}})
		return
	}
	e := events.Event{ID: events.ID(strconv.Itoa(f.nextID)), Attributes: in.Data}
	f.nextID++
	f.events = append(f.events, e)
	writeJSON(w, http.StatusOK, map[string]any{"data": e})
}

func (f *fakeAPI) update(w http.ResponseWriter, r *http.Request, body []byte) {
	var in struct {
		Data events.Attributes `json:"data"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": err.Error()}})
		return
	}
	id := events.ID(r.PathValue("id"))
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].Attributes = in.Data
			writeJSON(w, http.StatusOK, map[string]any{"data": f.events[i]})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"data": nil, "error": map[string]any{"status": 404, "message": "Not Found"}})
}

func (f *fakeAPI) remove(w http.ResponseWriter, r *http.Request, _ []byte) {
	id := events.ID(r.PathValue("id"))
	for i := range f.events {
		if f.events[i].ID == id {
			e := f.events[i]
			f.events = append(f.events[:i], f.events[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"data": e})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"data": nil, "error": map[string]any{"status": 404, "message": "Not Found"}})
}

func (f *fakeAPI) login(w http.ResponseWriter, _ *http.Request, _ []byte) {
	writeJSON(w, http.StatusOK, map[string]any{"jwt": f.jwt, "user": map[string]any{"id": 1}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
