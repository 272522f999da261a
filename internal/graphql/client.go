// Package graphql is the remote backend: a GraphQL-over-HTTP client that
// implements store.Store against the organization service.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tgienger/orgtrack/internal/store"
)

var _ store.Store = (*Client)(nil)

// RequestIDHeader carries the id generated for every request
const RequestIDHeader = "X-Request-ID"

// Config holds the connection settings of a Client
type Config struct {
	Endpoint string
	Timeout  time.Duration
	Token    string            // sent as a bearer token when set
	Headers  map[string]string // added to every request

	// HTTPClient replaces the default client; Timeout is then ignored
	HTTPClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client sends GraphQL operations to one endpoint. Requests are never
// retried.
type Client struct {
	httpClient *http.Client
	endpoint   string
	headers    map[string]string
	logger     *zap.Logger
	newID      func() string
}

// New creates a Client
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("graphql: endpoint is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("graphql: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("graphql: endpoint %q must be http or https", cfg.Endpoint)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		httpClient: httpClient,
		endpoint:   cfg.Endpoint,
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}
	if cfg.Token != "" {
		c.headers["Authorization"] = "Bearer " + cfg.Token
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []responseError            `json:"errors"`
}

type responseError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Error is a failed GraphQL exchange: a non-2xx status or a response carrying
// errors
type Error struct {
	Operation  string
	RequestID  string
	StatusCode int
	Messages   []string
}

func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("graphql: %s: %s", e.Operation, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("graphql: %s: unexpected status %d", e.Operation, e.StatusCode)
}

// do sends op and decodes the top-level field of the response data into out.
// A null field leaves out untouched and reports found=false.
func (c *Client) do(ctx context.Context, op operation, vars map[string]any, out any) (found bool, err error) {
	body, err := json.Marshal(request{Query: op.Document, Variables: vars, OperationName: op.Name})
	if err != nil {
		return false, fmt.Errorf("graphql: encode %s: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("graphql: build %s request: %w", op.Name, err)
	}
	requestID := c.newID()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("graphql request failed",
			zap.String("operation", op.Name),
			zap.String("request_id", requestID),
			zap.Error(err))
		return false, fmt.Errorf("graphql: %s: %w", op.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("graphql: read %s response: %w", op.Name, err)
	}

	c.logger.Debug("graphql request",
		zap.String("operation", op.Name),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &Error{Operation: op.Name, RequestID: requestID, StatusCode: resp.StatusCode}
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return false, fmt.Errorf("graphql: decode %s response: %w", op.Name, err)
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, len(decoded.Errors))
		for i, e := range decoded.Errors {
			msgs[i] = e.Message
		}
		return false, &Error{Operation: op.Name, RequestID: requestID, StatusCode: resp.StatusCode, Messages: msgs}
	}

	field, ok := decoded.Data[op.Field]
	if !ok {
		return false, fmt.Errorf("graphql: %s response has no %q field", op.Name, op.Field)
	}
	if string(field) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(field, out); err != nil {
		return false, fmt.Errorf("graphql: decode %s.%s: %w", op.Name, op.Field, err)
	}
	return true, nil
}
