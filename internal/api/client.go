// Package api provides the HTTP transport for communicating with an authr server.
// Every call runs through a Pipeline of request and response hooks.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single HTTP exchange
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the authr API
type Client struct {
	baseURL    string
	httpClient *http.Client
	pipeline   *Pipeline
	logger     *zap.SugaredLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying http client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new API client sending every call through pipeline
func NewClient(baseURL string, pipeline *Pipeline, options ...Option) *Client {
	if pipeline == nil {
		pipeline = NewPipeline()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		pipeline: pipeline,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req through the pipeline: request hooks, HTTP exchange, response hooks
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	requestHooks, responseHooks := c.pipeline.snapshot()
	prepared, err := c.pipeline.prepare(ctx, req, requestHooks)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, prepared)
	return c.pipeline.settle(ctx, c, responseHooks, resp, err)
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	url := req.Path
	if !strings.Contains(url, "://") {
		url = c.baseURL + "/" + strings.TrimLeft(url, "/")
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &RequestConfigError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	started := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debugw("request failed", "method", method, "url", url, "request_id", req.Header.Get(HeaderRequestID), "error", err)
		return nil, &NetworkError{Request: req, Err: err}
	}
	defer httpResp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Request: req, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	c.logger.Debugw("request completed",
		"method", method,
		"url", url,
		"status", httpResp.StatusCode,
		"retried", req.Retried,
		"request_id", req.Header.Get(HeaderRequestID),
		"duration", time.Since(started),
	)

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
		Request:    req,
	}

	// Check for error status codes
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp)
	}
	return resp, nil
}

func newAPIError(resp *Response) *APIError {
	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message, Response: resp}
	}
	// authr answers with a bare JSON string on most failures
	var text string
	if err := json.Unmarshal(resp.Body, &text); err == nil && text != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: text, Response: resp}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
		Response:   resp,
	}
}

// Request performs a call and decodes the JSON response into result
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(result)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.Request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.Request(ctx, http.MethodPost, path, body, result)
}

// RequestIDHook stamps each call with a correlation id, keeping an existing one
// so that replays share the id of the original call.
func RequestIDHook(ctx context.Context, req *Request) (*Request, error) {
	if req.Header.Get(HeaderRequestID) != "" {
		return req, nil
	}
	return req.WithHeader(HeaderRequestID, uuid.NewString()), nil
}
