package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HeaderRequestID carries the correlation id of a logical call.
const HeaderRequestID = "X-Request-ID"

// Request describes a single outgoing call.
// Hooks treat it as a value: they return modified copies instead of mutating it.
type Request struct {
	Method string
	// Path is either relative to the client base URL or an absolute URL.
	Path   string
	Header http.Header
	Body   []byte
	// Retried marks a descriptor that already went through a refresh-and-retry cycle.
	Retried bool
}

// NewRequest creates a request descriptor, encoding body as JSON when non-nil
func NewRequest(method, path string, body interface{}) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Header: http.Header{},
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestConfigError{Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		req.Body = data
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Clone returns a deep copy of the descriptor
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	ret := *r
	ret.Header = r.Header.Clone()
	if ret.Header == nil {
		ret.Header = http.Header{}
	}
	if r.Body != nil {
		ret.Body = append([]byte(nil), r.Body...)
	}
	return &ret
}

// WithHeader returns a copy with the header key set to value
func (r *Request) WithHeader(key, value string) *Request {
	ret := r.Clone()
	ret.Header.Set(key, value)
	return ret
}

// WithRetry returns a copy marked as retried
func (r *Request) WithRetry() *Request {
	ret := r.Clone()
	ret.Retried = true
	return ret
}

// BearerToken returns the token carried by the Authorization header, if any
func (r *Request) BearerToken() string {
	if r == nil || r.Header == nil {
		return ""
	}
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(value, "Bearer ")
}

func (r *Request) validate() error {
	if r == nil {
		return &RequestConfigError{Err: fmt.Errorf("request is nil")}
	}
	if strings.TrimSpace(r.Path) == "" {
		return &RequestConfigError{Err: fmt.Errorf("request path is empty")}
	}
	return nil
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Request is the descriptor that produced this response.
	Request *Request
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v interface{}) error {
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
