package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "/relative"})
	require.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, defaultUserAgent, c.userAgent)
	assert.NotNil(t, c.client.Jar)
	assert.Equal(t, defaultTimeout, c.client.Timeout)
	assert.Equal(t, int64(defaultMaxBody), c.maxBody)
}

func TestClient_Do_RequestShape(t *testing.T) {
	var got *http.Request
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		b, _ := io.ReadAll(r.Body)
		if len(b) > 0 {
			_ = json.Unmarshal(b, &gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		BaseURL:   srv.URL + "/v1",
		UserAgent: "mmkctl-test",
		Tokens:    staticToken("abc"),
	})
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), ports.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Query:  url.Values{"x": {"1"}},
		Body:   map[string]string{"email": "a@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(resp.Body))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/auth/login", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("x"))
	assert.Equal(t, "Bearer abc", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "mmkctl-test", got.Header.Get("User-Agent"))
	_, perr := uuid.Parse(got.Header.Get(HeaderRequestID))
	assert.NoError(t, perr)
	assert.Equal(t, "a@example.com", gotBody["email"])
}

func TestClient_Do_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Tokens: staticToken("")})
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), ports.Request{Path: "/auth/profile"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, auth)
}

func TestClient_Do_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantResp    bool
	}{
		{name: "json envelope on 401", contentType: "application/json", status: 401, body: `{"success":false,"message":"bad credentials"}`, wantResp: true},
		{name: "problem json", contentType: "application/problem+json; charset=utf-8", status: 422, body: `{"success":false}`, wantResp: true},
		{name: "plain text", contentType: "text/plain", status: 502, body: "bad gateway"},
		{name: "empty json", contentType: "application/json", status: 500, body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Config{BaseURL: srv.URL})
			require.NoError(t, err)

			resp, err := c.Do(context.Background(), ports.Request{Path: "/x"})
			if tt.wantResp {
				require.NoError(t, err)
				assert.Equal(t, tt.status, resp.StatusCode)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsTransport(err))
			assert.Equal(t, tt.status, apperrors.GetStatus(err))
			if tt.body != "" {
				assert.Contains(t, err.Error(), tt.body)
			}
		})
	}
}

func TestClient_Do_BodyLimit(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "at limit", body: `{"success":true}`},
		{name: "over limit", body: `{"success":true,"data":"padding"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Config{BaseURL: srv.URL, MaxBodyBytes: int64(len(`{"success":true}`))})
			require.NoError(t, err)

			resp, err := c.Do(context.Background(), ports.Request{Path: "/x"})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.JSONEq(t, tt.body, string(resp.Body))
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsTransport(err))
			assert.Equal(t, http.StatusOK, apperrors.GetStatus(err))
			assert.Contains(t, err.Error(), "exceeds 16 bytes")
		})
	}
}

func TestClient_Do_NetworkFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: addr})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), ports.Request{Path: "/auth/login"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_Do_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Do(ctx, ports.Request{Path: "/slow"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err))
}

func TestClient_Do_KeepsCookies(t *testing.T) {
	var second string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s1", Path: "/"})
		} else if c, err := r.Cookie("sid"); err == nil {
			second = c.Value
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), ports.Request{Path: "/a"})
	require.NoError(t, err)
	_, err = c.Do(context.Background(), ports.Request{Path: "/b"})
	require.NoError(t, err)
	assert.Equal(t, "s1", second)
}
