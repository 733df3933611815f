// Package iface defines service interfaces for the authr CLI.
// These interfaces enable dependency injection and mocking for tests.
package iface

import (
	"context"

	"github.com/authr-project/authr-cli/internal/token"
)

// Status describes the local session
type Status struct {
	LoggedIn bool          `json:"logged_in"`
	APIURL   string        `json:"api_url"`
	User     *token.User   `json:"user,omitempty"`
	Claims   *token.Claims `json:"claims,omitempty"`
	Expired  bool          `json:"expired"`
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login authenticates with username and password and stores the issued tokens
	Login(ctx context.Context, username, password string) (*token.User, error)

	// Register creates an account and stores the issued tokens
	Register(ctx context.Context, username, email, password string) (*token.User, error)

	// Logout ends the server session and clears stored credentials
	Logout(ctx context.Context) error

	// IsLoggedIn checks if credentials are stored
	// Note: This only checks if tokens exist, not if they're valid
	IsLoggedIn() bool

	// CurrentUser returns the stored user, nil when logged out
	CurrentUser() (*token.User, error)

	// Status returns the local session state decoded from the stored access token
	Status() (*Status, error)
}
