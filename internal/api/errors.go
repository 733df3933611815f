package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRequestConfig reports a malformed outgoing request.
	ErrRequestConfig = errors.New("invalid request configuration")
	// ErrNetwork reports a call that produced no response.
	ErrNetwork = errors.New("network failure")
	// ErrAuth reports a login, register or logout rejected by the server.
	ErrAuth = errors.New("authentication rejected")
	// ErrRefresh reports a rejected token refresh.
	ErrRefresh = errors.New("token refresh failed")
)

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Message string `json:"message"`
}

// APIError represents an error returned by the API
type APIError struct {
	StatusCode int
	Message    string
	Response   *Response
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized checks if the error is an unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNotFound checks if the error is a not found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// RequestConfigError is returned when a request cannot be built or sent as described
type RequestConfigError struct {
	Err error
}

func (e *RequestConfigError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *RequestConfigError) Unwrap() error { return e.Err }

func (e *RequestConfigError) Is(target error) bool { return target == ErrRequestConfig }

// NetworkError is returned when no response was received
type NetworkError struct {
	Request *Request
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// AuthError wraps a rejection of the login, register or logout endpoint
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// RefreshError wraps a failed refresh. It replaces the 401 that triggered the refresh.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh token: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

func (e *RefreshError) Is(target error) bool { return target == ErrRefresh }

// FailedRequest returns the descriptor carried by a transport error
func FailedRequest(err error) (*Request, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Response != nil && apiErr.Response.Request != nil {
		return apiErr.Response.Request, true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Request != nil {
		return netErr.Request, true
	}
	return nil, false
}

// FailedResponse returns the response carried by a transport error; false for network failures
func FailedResponse(err error) (*Response, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
