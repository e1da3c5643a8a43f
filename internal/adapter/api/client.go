package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	formContentType = "application/x-www-form-urlencoded"
	requestIDHeader = "X-Request-ID"
)

// TokenSource returns the current credential, "" when logged out. It is
// consulted once per request, at dispatch time.
type TokenSource func() string

// Options configures the HTTP side of the gateway.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional, overrides Timeout
}

// Request is one remote call. Op is a stable low-cardinality name used for
// metrics and spans.
type Request struct {
	Op     string
	Method string
	Path   string
	Form   url.Values // nil = no body
}

// Client is the typed gateway over the bulletin board API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logger.Logger
	metrics    *metrics.MetricsManager
	tracer     trace.Tracer

	mu             sync.RWMutex
	onUnauthorized []func(token string)
}

// NewClient creates the gateway. tokens may be nil for anonymous-only use;
// m may be nil.
func NewClient(opts Options, tokens TokenSource, log *logger.Logger, m *metrics.MetricsManager) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if tokens == nil {
		tokens = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		tokens:     tokens,
		logger:     log.Named("Gateway"),
		metrics:    m,
		tracer:     otel.Tracer("board-client/gateway"),
	}, nil
}

// OnUnauthorized registers fn to be called with the token a request carried
// whenever that request came back 401.
func (c *Client) OnUnauthorized(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

// Do performs req and decodes a successful JSON body into out (which may be nil).
// Every failure is a *domain.Failure.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "gateway."+req.Op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	)

	// токен читается в момент отправки, не в момент постановки в очередь
	token := c.tokens()

	httpReq, err := c.newHTTPRequest(ctx, req, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.ObserveRequest(req.Op, "error", time.Since(start).Seconds())
		return domain.NewNetworkFailure(err)
	}
	requestID := httpReq.Header.Get(requestIDHeader)

	c.logger.Debug("Sending request",
		zap.String("op", req.Op),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("request_id", requestID),
		zap.Bool("authorized", token != ""),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Request failed without response",
			zap.String("op", req.Op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "network failure")
		c.metrics.ObserveRequest(req.Op, "network_error", time.Since(start).Seconds())
		return domain.NewNetworkFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Failed to read response body", zap.String("op", req.Op), zap.Error(err))
		span.RecordError(err)
		c.metrics.ObserveRequest(req.Op, "network_error", time.Since(start).Seconds())
		return domain.NewNetworkFailure(err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure := domain.NewHTTPFailure(resp.StatusCode, errorMessage(body))
		c.logger.Warn("Request rejected",
			zap.String("op", req.Op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", failure.Message),
		)
		span.SetStatus(codes.Error, failure.Message)
		c.metrics.ObserveRequest(req.Op, failure.Kind.String(), time.Since(start).Seconds())
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.notifyUnauthorized(token)
		}
		return failure
	}

	c.metrics.ObserveRequest(req.Op, "ok", time.Since(start).Seconds())
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		// успешный статус с телом не-JSON считается пустым ответом
		c.logger.Debug("Ignoring non-JSON success body", zap.String("op", req.Op), zap.Error(err))
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", formContentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, nil
}

func (c *Client) notifyUnauthorized(token string) {
	c.mu.RLock()
	hooks := append([]func(string){}, c.onUnauthorized...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn(token)
	}
}

// errorMessage pulls the "error" field out of a JSON body, "" if absent.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var f *domain.Failure
	return errors.As(err, &f) && f.Kind == domain.FailureNetwork
}
