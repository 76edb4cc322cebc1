// Package testutil provides a scriptable fake of the restaurant backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
)

// Backend is an httptest server that routes on exact method and path and
// counts every call it receives.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	handlers map[string]http.HandlerFunc
	lastAuth string
}

// NewBackend starts a fake backend that is closed when t finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		calls:    make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.calls[key]++
	b.lastAuth = r.Header.Get("Authorization")
	h, ok := b.handlers[key]
	b.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "not found"})
		return
	}
	h(w, r)
}

// Handle installs h for method and path, replacing any previous handler.
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method+" "+path] = h
}

// Reply installs a handler that always answers status with body as JSON.
func (b *Backend) Reply(method, path string, status int, body any) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Calls returns how many times method and path were hit.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// LastAuthorization returns the Authorization header of the latest call.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

// Config points a backend config at this server.
func (b *Backend) Config() config.BackendConfig {
	return config.BackendConfig{BaseURL: b.URL, TimeoutSeconds: 5}
}

// Envelope wraps data in a successful {success, data} reply.
func Envelope(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

// WriteJSON writes body as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
