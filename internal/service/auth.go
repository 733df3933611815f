package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/authr-project/authr-cli/internal/api"
	iface "github.com/authr-project/authr-cli/internal/service/interface"
	"github.com/authr-project/authr-cli/internal/token"
)

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of the register endpoint
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authService implements iface.AuthService
type authService struct {
	client    *api.Client
	store     token.Store
	endpoints api.Endpoints
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(client *api.Client, store token.Store, endpoints api.Endpoints) iface.AuthService {
	return &authService{
		client:    client,
		store:     store,
		endpoints: endpoints,
		now:       time.Now,
	}
}

// Login authenticates and saves the issued tokens
func (s *authService) Login(ctx context.Context, username, password string) (*token.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	var user token.User
	if err := s.client.Post(ctx, s.endpoints.Login, &LoginRequest{Username: username, Password: password}, &user); err != nil {
		return nil, authFailure(err)
	}
	if err := s.persist(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account and saves the issued tokens
func (s *authService) Register(ctx context.Context, username, email, password string) (*token.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}
	req := &RegisterRequest{Username: username, Email: email, Password: password}
	var user token.User
	if err := s.client.Post(ctx, s.endpoints.Register, req, &user); err != nil {
		return nil, authFailure(err)
	}
	if err := s.persist(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// persist stores user only when the server issued an access token
func (s *authService) persist(user *token.User) error {
	if user.AccessToken == "" {
		return nil
	}
	if err := s.store.SetUser(user); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Logout ends the session on the server, then clears stored credentials
func (s *authService) Logout(ctx context.Context) error {
	if !s.IsLoggedIn() {
		return fmt.Errorf("not logged in")
	}
	if err := s.client.Post(ctx, s.endpoints.Logout, nil, nil); err != nil {
		return authFailure(err)
	}
	if err := s.store.RemoveUser(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// IsLoggedIn checks if the user has any stored token
func (s *authService) IsLoggedIn() bool {
	user, err := s.store.User()
	return err == nil && user.HasCredentials()
}

// CurrentUser returns the stored user
func (s *authService) CurrentUser() (*token.User, error) {
	user, err := s.store.User()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return user, nil
}

// Status reports the local session without contacting the server
func (s *authService) Status() (*iface.Status, error) {
	user, err := s.CurrentUser()
	if err != nil {
		return nil, err
	}
	status := &iface.Status{
		LoggedIn: s.IsLoggedIn(),
		APIURL:   s.client.BaseURL(),
		User:     user,
	}
	if user == nil || user.AccessToken == "" {
		return status, nil
	}
	claims, err := token.Inspect(user.AccessToken)
	if err != nil {
		return status, nil
	}
	status.Claims = claims
	status.Expired = claims.Expired(s.now())
	return status, nil
}

// authFailure marks server rejections of the authentication endpoints as AuthError
func authFailure(err error) error {
	if errors.Is(err, api.ErrRefresh) {
		return err
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &api.AuthError{Err: err}
	}
	return err
}
