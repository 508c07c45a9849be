package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"netinv.sh/internal/ferrors"
	"netinv.sh/internal/metrics"
	"netinv.sh/internal/middleware"
)

// defaultMaxBodySize caps a single list response; the device list alone can
// be several megabytes.
const defaultMaxBodySize = 64 << 20

// Client provides read access to the inventory REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxBody    int64
	logger     *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
	// MaxBodySize caps a list response; larger bodies fail the request.
	// Zero means 64 MiB.
	MaxBodySize int64
	// Transport overrides the underlying round tripper, mostly for tests
	Transport http.RoundTripper
}

type ClientOption func(*Client)

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new inventory API client
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ferrors.Wrapf(ferrors.ErrInvalidConfig, "api url %q", config.BaseURL)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}

	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if config.AuthToken != "" {
		transport = &authTransport{
			token:     config.AuthToken,
			transport: transport,
		}
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		baseURL: baseURL,
		maxBody: maxBody,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the base URL of the API
func (c *Client) BaseURL() string {
	return c.baseURL
}

// authTransport adds authentication headers to requests
type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.transport.RoundTrip(req)
}

func (c *Client) Devices(ctx context.Context, q Query) (*Envelope, error) {
	return c.List(ctx, ResourceDevices, q)
}

func (c *Client) Locations(ctx context.Context, q Query) (*Envelope, error) {
	return c.List(ctx, ResourceLocations, q)
}

func (c *Client) VLANs(ctx context.Context, q Query) (*Envelope, error) {
	return c.List(ctx, ResourceVLANs, q)
}

func (c *Client) Events(ctx context.Context, q Query) (*Envelope, error) {
	return c.List(ctx, ResourceEvents, q)
}

func (c *Client) Metrics(ctx context.Context, q Query) (*Envelope, error) {
	return c.List(ctx, ResourceMetrics, q)
}

// List fetches one page of a collection.
//
// A 401 answer yields ferrors.ErrUnauthorized, any other non-2xx answer a
// *ferrors.StatusError. A 204 answer yields an envelope with no body.
func (c *Client) List(ctx context.Context, resource Resource, q Query) (*Envelope, error) {
	start := time.Now()
	env, outcome, err := c.list(ctx, resource, q)
	metrics.RecordInventoryRequest(string(resource), outcome, time.Since(start).Seconds())
	if err != nil {
		c.logger.Debug("Inventory request failed", "resource", resource, "outcome", outcome, "error", err)
		return nil, err
	}
	return env, nil
}

func (c *Client) list(ctx context.Context, resource Resource, q Query) (*Envelope, string, error) {
	endpoint := c.baseURL + "/" + string(resource) + "?" + q.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "request_error", fmt.Errorf("failed to build %s request: %w", resource, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set(middleware.RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "transport_error", fmt.Errorf("failed to fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	outcome := strconv.Itoa(resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, outcome, ferrors.ErrUnauthorized
	case resp.StatusCode == http.StatusNoContent:
		return &Envelope{Resource: resource}, "ok", nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, outcome, statusError(resp, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, "read_error", fmt.Errorf("failed to read %s response: %w", resource, err)
	}
	// A cut-off body would decode as an empty list
	if int64(len(body)) > c.maxBody {
		return nil, "too_large", fmt.Errorf("%s response exceeds %d bytes: %w", resource, c.maxBody, ferrors.ErrResponseTooLarge)
	}

	c.logger.Debug("Fetched collection", "resource", resource, "bytes", len(body), "request_id", requestID)
	return &Envelope{Resource: resource, Raw: body}, "ok", nil
}

func statusError(resp *http.Response, body []byte) error {
	msg := ""
	if len(body) > 0 {
		if v := jsoniter.Get(body, "message"); v.ValueType() == jsoniter.StringValue {
			msg = v.ToString()
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &ferrors.StatusError{StatusCode: resp.StatusCode, Message: msg}
}
