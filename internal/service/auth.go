package service

import (
	"context"
	"net/http"
	"time"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/events"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Default failure messages reported when the backend omits one.
const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
	msgProfileFailed      = "Failed to get profile"
	msgRefreshFailed      = "Token refresh failed"
)

// AuthData is the nested location some backends use for credentials.
type AuthData struct {
	Token        string            `json:"token,omitempty"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	User         domainauth.Record `json:"user,omitempty"`
}

// AuthResponse is the envelope returned by the /auth endpoints.
type AuthResponse struct {
	Envelope
	Token        string            `json:"token,omitempty"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	User         domainauth.Record `json:"user,omitempty"`
	Data         *AuthData         `json:"data,omitempty"`
}

// ResolvedToken returns the top-level token, else the nested one.
func (r *AuthResponse) ResolvedToken() string {
	if r.Token != "" {
		return r.Token
	}
	if r.Data != nil {
		return r.Data.Token
	}
	return ""
}

// ResolvedRefreshToken returns the top-level refresh token, else the nested one.
func (r *AuthResponse) ResolvedRefreshToken() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	if r.Data != nil {
		return r.Data.RefreshToken
	}
	return ""
}

// ResolvedUser returns the top-level user, else the nested one, else an empty record.
func (r *AuthResponse) ResolvedUser() domainauth.Record {
	if len(r.User) > 0 {
		return r.User
	}
	if r.Data != nil && len(r.Data.User) > 0 {
		return r.Data.User
	}
	return domainauth.Record{}
}

type expiringSession interface {
	ExpiresAt() (time.Time, bool)
}

// AuthClient orchestrates login, registration, logout, profile and token refresh.
type AuthClient struct {
	caller
	session ports.SessionContext
}

// NewAuthClient constructs an AuthClient.
func NewAuthClient(opts ClientOptions) *AuthClient {
	if opts.Session == nil {
		panic("Session is required")
	}
	return &AuthClient{
		caller:  newCaller(opts, "auth_client"),
		session: opts.Session,
	}
}

// Login authenticates with credentials. A successful envelope carrying a token (top
// level or under data) is committed to the session and persisted under all four keys.
func (c *AuthClient) Login(ctx context.Context, creds domainauth.Credentials) *AuthResponse {
	out := &AuthResponse{}
	if err := creds.Validate(); err != nil {
		c.reject(ctx, events.AuthLogin, err, out)
		return out
	}

	req := ports.Request{Method: http.MethodPost, Path: "/auth/login", Body: creds}
	hasToken := func() bool { return out.ResolvedToken() != "" }
	if !c.exchangeChecked(ctx, events.AuthLogin, msgLoginFailed, req, out, hasToken) {
		return out
	}

	token := out.ResolvedToken()

	user := out.ResolvedUser()
	if err := c.session.SetSession(ctx, token, out.ResolvedRefreshToken(), user); err != nil {
		c.logger.ErrorContext(ctx, "persist session after login", "error", err)
	}
	c.publish(ctx, events.AuthLogin.Success(), events.Payload{"user": user, "token": token})
	return out
}

// Register creates an account. Only a top-level token counts; the refresh token is
// neither kept nor persisted on this path.
func (c *AuthClient) Register(ctx context.Context, data domainauth.RegisterData) *AuthResponse {
	out := &AuthResponse{}
	if err := data.Validate(); err != nil {
		c.reject(ctx, events.AuthRegister, err, out)
		return out
	}

	req := ports.Request{Method: http.MethodPost, Path: "/auth/register", Body: data}
	hasToken := func() bool { return out.Token != "" }
	if !c.exchangeChecked(ctx, events.AuthRegister, msgRegistrationFailed, req, out, hasToken) {
		return out
	}

	user := out.User
	if user == nil {
		user = domainauth.Record{}
	}
	if err := c.session.SetRegisteredSession(ctx, out.Token, user); err != nil {
		c.logger.ErrorContext(ctx, "persist session after registration", "error", err)
	}
	c.publish(ctx, events.AuthRegister.Success(), events.Payload{"user": user, "token": out.Token})
	return out
}

// Logout clears the session and always announces it. No remote call is made.
func (c *AuthClient) Logout(ctx context.Context) {
	if err := c.session.ClearSession(ctx); err != nil {
		c.logger.ErrorContext(ctx, "clear persisted session", "error", err)
	}
	c.publish(ctx, events.TopicAuthLogout, events.Payload{})
}

// GetProfile fetches the current user and replaces the in-memory user only.
func (c *AuthClient) GetProfile(ctx context.Context) *AuthResponse {
	out := &AuthResponse{}
	req := ports.Request{Method: http.MethodGet, Path: "/auth/profile"}
	if !c.exchange(ctx, events.AuthProfile, msgProfileFailed, req, out) {
		return out
	}

	user := out.ResolvedUser()
	c.session.SetUser(user)
	c.publish(ctx, events.AuthProfile.Success(), events.Payload{"user": user})
	return out
}

// RefreshToken exchanges a credential for a new token. The credential is the supplied
// value, else the current token. A failed refresh is announced but leaves the session
// in place. A success without a top-level token is returned as-is and changes nothing.
// When the response carries no refresh token the held one is kept; the credential sent
// is never stored.
func (c *AuthClient) RefreshToken(ctx context.Context, supplied string) *AuthResponse {
	credential := supplied
	if credential == "" {
		credential = c.session.Token()
	}

	out := &AuthResponse{}
	req := ports.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   map[string]string{"refreshToken": credential},
	}
	if !c.exchange(ctx, events.AuthRefresh, msgRefreshFailed, req, out) {
		return out
	}
	if out.Token == "" {
		c.logger.DebugContext(ctx, "refresh succeeded without token; session unchanged")
		return out
	}

	refresh := out.ResolvedRefreshToken()
	if refresh == "" {
		refresh = c.session.RefreshToken()
	}
	user := out.ResolvedUser()
	if err := c.session.SetSession(ctx, out.Token, refresh, user); err != nil {
		c.logger.ErrorContext(ctx, "persist session after refresh", "error", err)
	}
	c.publish(ctx, events.AuthRefresh.Success(), events.Payload{"user": user, "token": out.Token})
	return out
}

// RefreshIfExpiring refreshes when the current JWT expires within window. It reports
// whether a refresh was attempted. Opaque tokens are never refreshed here.
func (c *AuthClient) RefreshIfExpiring(ctx context.Context, window time.Duration) (*AuthResponse, bool) {
	es, ok := c.session.(expiringSession)
	if !ok || !c.session.IsAuthenticated() {
		return nil, false
	}
	exp, ok := es.ExpiresAt()
	if !ok || time.Until(exp) > window {
		return nil, false
	}
	return c.RefreshToken(ctx, ""), true
}

// IsAuthenticated reports whether the session holds a token.
func (c *AuthClient) IsAuthenticated() bool { return c.session.IsAuthenticated() }

// CurrentUser returns the session user, or nil when none is held.
func (c *AuthClient) CurrentUser() domainauth.Record { return c.session.CurrentUser() }
