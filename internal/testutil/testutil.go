// Package testutil provides a fake backend, event recorder and builders for client tests.
package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Skip(args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

// RecordedRequest is a request observed by the fake backend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into a map.
func (r RecordedRequest) JSON() map[string]any {
	out := map[string]any{}
	if len(r.Body) == 0 {
		return out
	}
	_ = json.Unmarshal(r.Body, &out)
	return out
}

// Backend is an httptest server answering routes registered with Handle.
// Unregistered routes answer 404 with a JSON failure envelope.
type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t TestingTB) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string { return b.server.URL }

// Handle registers a handler for method and path.
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

// JSON registers a route answering with status and v encoded as JSON.
func (b *Backend) JSON(method, path string, status int, v any) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, v)
	})
}

// Requests returns the requests observed so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request, or a zero value.
func (b *Backend) LastRequest() RecordedRequest {
	reqs := b.Requests()
	if len(reqs) == 0 {
		return RecordedRequest{}
	}
	return reqs[len(reqs)-1]
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := b.routes[r.Method+" "+r.URL.EscapedPath()]
	b.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "route not found"})
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Event is a publish observed by Recorder.
type Event struct {
	Topic   string
	Payload map[string]any
}

// Recorder is an event publisher that records every publish.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, topic string, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Topic: topic, Payload: payload})
	return nil
}

// Events returns the recorded events in publish order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Topics returns the recorded topics in publish order.
func (r *Recorder) Topics() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Topic
	}
	return out
}

// Last returns the last event published on topic.
func (r *Recorder) Last(topic string) (Event, bool) {
	evs := r.Events()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Topic == topic {
			return evs[i], true
		}
	}
	return Event{}, false
}

// SkipIfNoRedis skips unless TEST_REDIS_ADDR is set, or fails when
// TEST_REQUIRE_REDIS demands a live server.
func SkipIfNoRedis(t TestingTB) string {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr != "" {
		return addr
	}
	if requireRedis() {
		t.Fatal("TEST_REQUIRE_REDIS is set but TEST_REDIS_ADDR is empty")
	}
	t.Skip("TEST_REDIS_ADDR not set; skipping live Redis test")
	return ""
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// FixedTimeFunc returns a function that always returns t.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
