// Package workflowtest provides an end-to-end harness for the auth session lifecycle:
// a stateful fake backend plus fully wired clients backed by real session storage.
package workflowtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/adapters/memory"
	redisstore "github.com/target/mmk-ui-client/internal/adapters/redis"
	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/events"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/testutil"
)

// Account is a user known to the fake backend.
type Account struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []string
}

func (a *Account) record() map[string]any {
	return map[string]any{
		"id":         a.ID,
		"email":      a.Email,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"roles":      a.Roles,
	}
}

// WorkflowTestOptions configures the workflow test harness.
//
//nolint:revive // WorkflowTestOptions is intentionally verbose for clarity in test code.
type WorkflowTestOptions struct {
	// EnableRedis persists the session in Redis instead of memory.
	EnableRedis bool
	// RedisAddr overrides the embedded Redis with an external instance.
	RedisAddr string
	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration
	// NestedCredentials answers login under "data" instead of at the top level.
	NestedCredentials bool
	// Accounts seeds the backend.
	Accounts []Account
}

// WorkflowTestHarness wires clients to a fake auth backend.
//
//nolint:revive // WorkflowTestHarness is intentionally verbose for clarity in test code.
type WorkflowTestHarness struct {
	t    testutil.TestingTB
	opts WorkflowTestOptions
	ts   *httptest.Server

	mu       sync.Mutex
	accounts map[string]*Account // by email
	access   map[string]string   // access token -> account id, accepted as bearer
	issued   map[string]string   // access token -> account id, accepted once by refresh
	refresh  map[string]string   // refresh token -> account id
	calls    map[string]int

	// Storage is shared across Reopen calls, standing in for the persistent store
	// that outlives a process.
	Storage ports.KeyValueStore
	Clients *bootstrap.Clients
	Events  *testutil.Recorder

	redis     *miniredis.Miniredis
	closeFunc func() error
}

// NewWorkflowTestHarness starts the fake backend and wires a first set of clients.
func NewWorkflowTestHarness(t testutil.TestingTB, opts WorkflowTestOptions) *WorkflowTestHarness {
	t.Helper()

	if opts.TokenTTL == 0 {
		opts.TokenTTL = time.Hour
	}

	h := &WorkflowTestHarness{
		t:        t,
		opts:     opts,
		accounts: map[string]*Account{},
		access:   map[string]string{},
		issued:   map[string]string{},
		refresh:  map[string]string{},
		calls:    map[string]int{},
	}
	for i := range opts.Accounts {
		a := opts.Accounts[i]
		h.accounts[strings.ToLower(a.Email)] = &a
	}

	h.setupStorage()
	h.ts = httptest.NewServer(h.createTestRouter())
	h.Reopen()
	return h
}

func (h *WorkflowTestHarness) setupStorage() {
	h.t.Helper()

	if !h.opts.EnableRedis {
		h.Storage = memory.NewStorage()
		return
	}

	addr := h.opts.RedisAddr
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			h.t.Fatalf("start embedded redis: %v", err)
		}
		h.redis = mr
		addr = mr.Addr()
	}

	client, err := bootstrap.ConnectRedis(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		h.t.Skip("redis test instance unavailable: " + err.Error())
		return
	}
	h.Storage = redisstore.NewStorageWithPrefix(client, "workflow:"+uuid.NewString()+":")
	h.closeFunc = client.Close
}

// Reopen discards the current clients and wires new ones over the same storage, as a
// process restart would. Events recorded so far are dropped.
func (h *WorkflowTestHarness) Reopen() {
	h.t.Helper()

	clients, err := bootstrap.NewClients(context.Background(), bootstrap.ClientsOptions{
		Config:  config.AppConfig{API: config.APIConfig{BaseURL: h.ts.URL, Timeout: 5 * time.Second}},
		Storage: h.Storage,
	})
	if err != nil {
		h.t.Fatalf("wire clients: %v", err)
	}
	h.Clients = clients
	h.Events = &testutil.Recorder{}
	for _, topic := range lifecycleTopics() {
		clients.Bus.Subscribe(topic, events.HandlerFunc(h.Events.Publish))
	}
}

func lifecycleTopics() []string {
	var topics []string
	for _, op := range []events.Operation{events.AuthLogin, events.AuthRegister, events.AuthProfile, events.AuthRefresh} {
		topics = append(topics, op.Success(), op.Error())
	}
	return append(topics, events.TopicAuthLogout)
}

// createTestRouter serves the /auth endpoints.
func (h *WorkflowTestHarness) createTestRouter() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", h.count(h.handleLogin))
	mux.HandleFunc("POST /auth/register", h.count(h.handleRegister))
	mux.HandleFunc("GET /auth/profile", h.count(h.handleProfile))
	mux.HandleFunc("POST /auth/refresh", h.count(h.handleRefresh))
	return mux
}

func (h *WorkflowTestHarness) count(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.calls[r.Method+" "+r.URL.Path]++
		h.mu.Unlock()
		next(w, r)
	}
}

func (h *WorkflowTestHarness) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	h.mu.Lock()
	acct, ok := h.accounts[strings.ToLower(body.Email)]
	h.mu.Unlock()
	if !ok || acct.Password != body.Password {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	creds := map[string]any{
		"token":        h.issueAccess(acct.ID),
		"refreshToken": h.issueRefresh(acct.ID),
		"user":         acct.record(),
	}
	if h.opts.NestedCredentials {
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": creds})
		return
	}
	creds["success"] = true
	testutil.WriteJSON(w, http.StatusOK, creds)
}

func (h *WorkflowTestHarness) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !decode(w, r, &body) {
		return
	}

	key := strings.ToLower(body.Email)
	h.mu.Lock()
	if _, exists := h.accounts[key]; exists {
		h.mu.Unlock()
		fail(w, http.StatusConflict, "Email already registered")
		return
	}
	acct := &Account{
		ID:        uuid.NewString(),
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Roles:     []string{"user"},
	}
	h.accounts[key] = acct
	h.mu.Unlock()

	testutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   h.issueAccess(acct.ID),
		"user":    acct.record(),
	})
}

func (h *WorkflowTestHarness) handleProfile(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	acct := h.lookup(h.access, token)
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	testutil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": acct.record()})
}

func (h *WorkflowTestHarness) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &body) {
		return
	}

	// Either a refresh token or a previously issued access token is exchanged, once.
	index := h.refresh
	acct := h.lookup(index, body.RefreshToken)
	if acct == nil {
		index = h.issued
		acct = h.lookup(index, body.RefreshToken)
	}
	if acct == nil {
		fail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	h.mu.Lock()
	delete(index, body.RefreshToken)
	h.mu.Unlock()

	testutil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"token":        h.issueAccess(acct.ID),
		"refreshToken": h.issueRefresh(acct.ID),
		"user":         acct.record(),
	})
}

func (h *WorkflowTestHarness) lookup(index map[string]string, token string) *Account {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := index[token]
	if !ok || token == "" {
		return nil
	}
	for _, a := range h.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (h *WorkflowTestHarness) issueAccess(accountID string) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.opts.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testutil.TestSigningKey)
	if err != nil {
		h.t.Fatalf("sign access token: %v", err)
	}
	h.mu.Lock()
	h.access[token] = accountID
	h.issued[token] = accountID
	h.mu.Unlock()
	return token
}

func (h *WorkflowTestHarness) issueRefresh(accountID string) string {
	token := "rt-" + uuid.NewString()
	h.mu.Lock()
	h.refresh[token] = accountID
	h.mu.Unlock()
	return token
}

// RevokeAccess invalidates every issued access token as a bearer credential, forcing
// the next profile call to fail until a refresh succeeds. Revoked tokens can still be
// exchanged once at the refresh endpoint.
func (h *WorkflowTestHarness) RevokeAccess() {
	h.mu.Lock()
	h.access = map[string]string{}
	h.mu.Unlock()
}

// Calls reports how many times the backend served method and path.
func (h *WorkflowTestHarness) Calls(method, path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[method+" "+path]
}

// BaseURL returns the base URL of the fake backend.
func (h *WorkflowTestHarness) BaseURL() string {
	return h.ts.URL
}

// Close cleans up all resources.
func (h *WorkflowTestHarness) Close() {
	h.t.Helper()

	if h.ts != nil {
		h.ts.Close()
	}
	if h.closeFunc != nil {
		if err := h.closeFunc(); err != nil {
			h.t.Logf("warning: failed to close redis client: %v", err)
		}
	}
	if h.redis != nil {
		h.redis.Close()
	}
}

// WithWorkflowHarness sets up a harness, runs fn and tears it down.
func WithWorkflowHarness(t testutil.TestingTB, opts WorkflowTestOptions, fn func(*WorkflowTestHarness)) {
	t.Helper()

	harness := NewWorkflowTestHarness(t, opts)
	defer harness.Close()
	fn(harness)
}

// DefaultWorkflowOptions returns options with one seeded account and memory storage.
func DefaultWorkflowOptions() WorkflowTestOptions {
	return WorkflowTestOptions{
		TokenTTL: time.Hour,
		Accounts: []Account{DefaultAccount()},
	}
}

// RedisWorkflowOptions is DefaultWorkflowOptions with Redis-backed storage.
func RedisWorkflowOptions() WorkflowTestOptions {
	opts := DefaultWorkflowOptions()
	opts.EnableRedis = true
	return opts
}

// DefaultAccount is the account seeded by DefaultWorkflowOptions.
func DefaultAccount() Account {
	return Account{
		ID:        "user-1",
		Email:     "ada@example.com",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Roles:     []string{"admin"},
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func fail(w http.ResponseWriter, status int, message string) {
	testutil.WriteJSON(w, status, map[string]any{"success": false, "message": message})
}
