package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/target/mmk-ui-client/internal/events"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
	obserrors "github.com/target/mmk-ui-client/internal/observability/errors"
	"github.com/target/mmk-ui-client/internal/observability/metrics"
	"github.com/target/mmk-ui-client/internal/observability/statsd"
	"github.com/target/mmk-ui-client/internal/ports"
)

// DefaultNetworkError is reported when a transport failure carries no message.
const DefaultNetworkError = "Network error"

// Envelope is the uniform result shape of every backend call. Client methods never
// return Go errors; a failed call comes back with Success=false and Error set.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	cause error
}

// Err returns nil on success, otherwise the typed failure (envelope, transport,
// timeout, validation or decode AppError).
func (e *Envelope) Err() error {
	if e.Success {
		return nil
	}
	if e.cause != nil {
		return e.cause
	}
	return apperrors.Envelope(e.failureText(""))
}

func (e *Envelope) envelope() *Envelope { return e }

func (e *Envelope) fail(message string, cause error) {
	e.Success = false
	e.Error = message
	e.cause = cause
}

func (e *Envelope) failureText(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return fallback
}

type envelopeCarrier interface {
	envelope() *Envelope
}

// caller carries the collaborators shared by every client.
type caller struct {
	transport ports.Transport
	events    ports.EventPublisher
	metrics   statsd.Sink
	logger    *slog.Logger
}

// ClientOptions groups dependencies shared by the API clients.
type ClientOptions struct {
	Transport ports.Transport      // Required
	Session   ports.SessionContext // Required by session-aware clients
	Events    ports.EventPublisher // Optional: lifecycle announcements
	Metrics   statsd.Sink          // Optional: per-operation counters and latency
	Logger    *slog.Logger         // Optional
}

func newCaller(opts ClientOptions, component string) caller {
	if opts.Transport == nil {
		panic("Transport is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return caller{
		transport: opts.Transport,
		events:    opts.Events,
		metrics:   opts.Metrics,
		logger:    logger.With("component", component),
	}
}

// exchange performs req and decodes the envelope into out. It reports whether the
// backend answered success=true; on any failure the result is recorded on out and
// published on the operation's error topic.
func (c *caller) exchange(ctx context.Context, op events.Operation, fallback string, req ports.Request, out envelopeCarrier) bool {
	return c.exchangeChecked(ctx, op, fallback, req, out, nil)
}

// exchangeChecked is exchange with an extra check on a success=true envelope. When
// accept reports false the envelope is failed with fallback before the result is
// recorded.
func (c *caller) exchangeChecked(
	ctx context.Context,
	op events.Operation,
	fallback string,
	req ports.Request,
	out envelopeCarrier,
	accept func() bool,
) bool {
	start := time.Now()
	ok := c.roundTrip(ctx, op, fallback, req, out)
	if ok && accept != nil && !accept() {
		c.failEnvelope(ctx, op, fallback, out.envelope())
		ok = false
	}

	result := metrics.ResultSuccess
	if !ok {
		result = metrics.ResultError
	}
	c.observe(op, result, time.Since(start), out.envelope())
	return ok
}

func (c *caller) roundTrip(ctx context.Context, op events.Operation, fallback string, req ports.Request, out envelopeCarrier) bool {
	env := out.envelope()

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		c.failTransport(ctx, op, err, env)
		return false
	}

	if err := decodeEnvelope(resp, out); err != nil {
		env.fail("Invalid response from server", err)
		c.publishError(ctx, op, env.Error)
		return false
	}

	if !env.Success {
		c.failEnvelope(ctx, op, fallback, env)
		return false
	}
	return true
}

// run is exchange followed by a success publish with the payload built by onSuccess.
func (c *caller) run(
	ctx context.Context,
	op events.Operation,
	fallback string,
	req ports.Request,
	out envelopeCarrier,
	onSuccess func() events.Payload,
) {
	if !c.exchange(ctx, op, fallback, req, out) {
		return
	}
	var payload events.Payload
	if onSuccess != nil {
		payload = onSuccess()
	}
	c.publish(ctx, op.Success(), payload)
}

// reject records an input validation failure without contacting the backend.
func (c *caller) reject(ctx context.Context, op events.Operation, err error, out envelopeCarrier) {
	env := out.envelope()
	cause := err
	if !apperrors.IsValidation(err) {
		cause = apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid input")
	}
	env.fail(err.Error(), cause)
	c.observe(op, metrics.ResultRejected, 0, env)
	c.publishError(ctx, op, env.Error)
}

func (c *caller) observe(op events.Operation, result string, elapsed time.Duration, env *Envelope) {
	if c.metrics == nil {
		return
	}
	metrics.EmitRequest(c.metrics, metrics.RequestMetric{
		Operation: string(op),
		Result:    result,
		Duration:  elapsed,
		Err:       env.Err(),
	})
}

func (c *caller) failEnvelope(ctx context.Context, op events.Operation, fallback string, env *Envelope) {
	msg := env.failureText(fallback)
	env.fail(msg, apperrors.Envelope(msg))
	c.publishError(ctx, op, msg)
}

func (c *caller) failTransport(ctx context.Context, op events.Operation, err error, env *Envelope) {
	msg := transportMessage(err)
	level := slog.LevelWarn
	if apperrors.IsCanceled(err) {
		level = slog.LevelDebug
	}
	c.logger.Log(ctx, level, "request failed",
		"operation", string(op),
		"error_class", obserrors.Classify(err),
		"error", err)
	env.fail(msg, err)
	c.publishError(ctx, op, msg)
}

func (c *caller) publishError(ctx context.Context, op events.Operation, message string) {
	c.publish(ctx, op.Error(), events.Payload{"message": message})
}

func (c *caller) publish(ctx context.Context, topic string, payload events.Payload) {
	if c.events == nil {
		return
	}
	if payload == nil {
		payload = events.Payload{}
	}
	if err := c.events.Publish(ctx, topic, payload); err != nil {
		c.logger.DebugContext(ctx, "event subscribers failed", "topic", topic, "error", err)
	}
}

// transportMessage prefers the underlying error text, falling back to the generic
// network message.
func transportMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.Code == apperrors.ErrCodeTransport && appErr.Cause != nil:
			if msg := strings.TrimSpace(appErr.Cause.Error()); msg != "" {
				return msg
			}
		case appErr.Message != "":
			return appErr.Message
		}
		return DefaultNetworkError
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return DefaultNetworkError
}

func decodeEnvelope(resp *ports.Response, out envelopeCarrier) error {
	body := resp.Body
	if len(strings.TrimSpace(string(body))) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			out.envelope().Success = true
			return nil
		}
		return apperrors.Transportf("HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(fmt.Errorf("decode envelope: %w", err), apperrors.ErrCodeDecode, "invalid response body")
	}
	return nil
}
