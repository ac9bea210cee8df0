// Package httpapi implements ports.Transport over net/http against the backend API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "mmk-ui-client"
	defaultMaxBody   = 10 << 20
	maxErrorBody     = 512

	// HeaderRequestID correlates a call with backend logs.
	HeaderRequestID = "X-Request-ID"
)

var _ ports.Transport = (*Client)(nil)

// TokenSource yields the bearer token attached to outgoing requests. An empty token
// sends the request without an Authorization header.
type TokenSource interface {
	AccessToken() string
}

// Config captures the transport settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// MaxBodyBytes caps the response body; larger bodies fail the call.
	MaxBodyBytes int64
	// Client overrides the HTTP client; its cookie jar is left untouched.
	Client *http.Client
	Tokens TokenSource
	Logger *slog.Logger
}

// Client performs JSON calls against the backend API.
type Client struct {
	base      *url.URL
	userAgent string
	maxBody   int64
	client    *http.Client
	tokens    TokenSource
	logger    *slog.Logger
}

// NewClient builds a transport. The base URL must be absolute.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute: %q", raw)
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, jerr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jerr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jerr)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		userAgent: ua,
		maxBody:   maxBody,
		client:    hc,
		tokens:    cfg.Tokens,
		logger:    logger.With("component", "httpapi"),
	}, nil
}

// Do sends the request and returns the raw response. 2xx responses and non-2xx
// responses carrying a JSON body are returned as responses so the caller can read the
// envelope. Other non-2xx responses and network failures are returned as AppErrors.
func (c *Client) Do(ctx context.Context, in ports.Request) (*ports.Response, error) {
	req, err := c.newRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", req.Header.Get(HeaderRequestID),
			"error", err)
		return nil, apperrors.MapTransportError(err)
	}

	body, err := readBody(resp, c.maxBody)
	if err != nil {
		return nil, apperrors.MapTransportError(err)
	}

	c.logger.DebugContext(ctx, "request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(HeaderRequestID),
		"duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &ports.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}
	if isJSON(resp.Header) && len(bytes.TrimSpace(body)) > 0 {
		return &ports.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}
	return nil, httpError(resp.StatusCode, body)
}

func (c *Client) newRequest(ctx context.Context, in ports.Request) (*http.Request, error) {
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}

	ref, err := url.Parse(strings.TrimPrefix(in.Path, "/"))
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "invalid request path %q", in.Path)
	}
	target := c.resolve(ref)
	if len(in.Query) > 0 {
		target.RawQuery = in.Query.Encode()
	}

	var body io.Reader
	if in.Body != nil {
		b, merr := json.Marshal(in.Body)
		if merr != nil {
			return nil, apperrors.Wrap(merr, apperrors.ErrCodeInternal, "encode request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, uuid.NewString())

	if c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}
	return req, nil
}

// resolve joins ref onto the base URL, keeping any path prefix the base carries.
func (c *Client) resolve(ref *url.URL) *url.URL {
	base := *c.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		if base.RawPath != "" {
			base.RawPath += "/"
		}
	}
	return base.ResolveReference(ref)
}

func readBody(resp *http.Response, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	closeErr := resp.Body.Close()

	switch {
	case err != nil && closeErr != nil:
		return nil, errors.Join(
			fmt.Errorf("read response body: %w", err),
			fmt.Errorf("close response body: %w", closeErr),
		)
	case err != nil:
		return nil, fmt.Errorf("read response body: %w", err)
	case int64(len(body)) > limit:
		tooLarge := apperrors.Transportf("response body exceeds %d bytes", limit)
		tooLarge.Status = resp.StatusCode
		return nil, tooLarge
	case closeErr != nil:
		return nil, fmt.Errorf("close response body: %w", closeErr)
	}
	return body, nil
}

func isJSON(h http.Header) bool {
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func httpError(status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	appErr := apperrors.Transportf("HTTP %d", status)
	if text != "" {
		appErr = apperrors.Transportf("HTTP %d: %s", status, text)
	}
	appErr.Status = status
	return appErr
}
