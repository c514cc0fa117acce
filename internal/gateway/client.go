// AngelaMos | 2026
// client.go

// Package gateway is the only code that talks to the backend. It attaches
// the bearer credential, strips the response envelope and turns every
// failure into a *RemoteError. It never retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName     = "github.com/carterperez-dev/doubtspace/internal/gateway"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// CredentialSource yields the current bearer token, empty when there is no
// session.
type CredentialSource interface {
	Token() string
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Credentials CredentialSource
	Logger      *slog.Logger
	Tracer      trace.Tracer
}

type Client struct {
	baseURL     *url.URL
	http        *http.Client
	credentials CredentialSource
	logger      *slog.Logger
	tracer      trace.Tracer
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Client{
		baseURL:     base,
		http:        httpClient,
		credentials: cfg.Credentials,
		logger:      logger,
		tracer:      tracer,
	}, nil
}

// SetCredentials swaps the credential source. Used by the session store,
// which itself depends on the client for login.
func (c *Client) SetCredentials(src CredentialSource) {
	c.credentials = src
}

type credentialKey struct{}

// WithCredential pins the bearer token used by calls made with ctx. An empty
// token pins "no credential".
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

func (c *Client) bearer(ctx context.Context) string {
	if token, ok := ctx.Value(credentialKey{}).(string); ok {
		return token
	}
	if c.credentials == nil {
		return ""
	}
	return c.credentials.Token()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	raw    bool
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	ctx, span := c.tracer.Start(ctx, "gateway."+req.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", req.path),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, req, out)

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.logger.Debug("gateway call",
		"op", req.op,
		"method", req.method,
		"path", req.path,
		"status", status,
		"duration", time.Since(start),
		"error", err,
	)

	return err
}

func (c *Client) roundTrip(ctx context.Context, req request, out any) (int, error) {
	// req.path is already escaped; Path must hold the decoded form or the
	// escapes get encoded twice.
	target := *c.baseURL
	target.RawPath = target.EscapedPath() + req.path
	decoded, err := url.PathUnescape(target.RawPath)
	if err != nil {
		return 0, &RemoteError{
			Op:       req.op,
			Category: CategoryValidation,
			Message:  "build request path",
			Err:      err,
		}
	}
	target.Path = decoded
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return 0, &RemoteError{
				Op:       req.op,
				Category: CategoryValidation,
				Message:  "encode request body",
				Err:      err,
			}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return 0, &RemoteError{
			Op:       req.op,
			Category: CategoryNetwork,
			Message:  "build request",
			Err:      err,
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &RemoteError{
			Op:       req.op,
			Category: CategoryNetwork,
			Message:  err.Error(),
			Err:      err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, &RemoteError{
			Op:       req.op,
			Category: CategoryNetwork,
			Status:   resp.StatusCode,
			Message:  "read response body",
			Err:      err,
		}
	}

	if req.raw {
		if resp.StatusCode >= 300 {
			return resp.StatusCode, remoteFromStatus(req.op, resp.StatusCode, "", "")
		}
		if dst, ok := out.(*[]byte); ok {
			*dst = payload
		}
		return resp.StatusCode, nil
	}

	var env envelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			if resp.StatusCode >= 300 {
				return resp.StatusCode, remoteFromStatus(req.op, resp.StatusCode, "", "")
			}
			return resp.StatusCode, &RemoteError{
				Op:       req.op,
				Category: CategoryNetwork,
				Status:   resp.StatusCode,
				Message:  "malformed response envelope",
				Err:      err,
			}
		}
	} else if resp.StatusCode < 300 {
		env.Success = true
	}

	if resp.StatusCode >= 300 || !env.Success {
		return resp.StatusCode, remoteFromStatus(req.op, resp.StatusCode, env.Code, env.Message)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return resp.StatusCode, &RemoteError{
			Op:       req.op,
			Category: CategoryNetwork,
			Status:   resp.StatusCode,
			Message:  "malformed response data",
			Err:      err,
		}
	}

	return resp.StatusCode, nil
}

func remoteFromStatus(op string, status int, code, message string) *RemoteError {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "request failed"
	}
	return &RemoteError{
		Op:       op,
		Category: CategoryFor(status),
		Status:   status,
		Code:     code,
		Message:  message,
	}
}
