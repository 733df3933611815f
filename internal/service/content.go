package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/authr-project/authr-cli/internal/api"
	iface "github.com/authr-project/authr-cli/internal/service/interface"
)

var boardPaths = map[string]string{
	iface.BoardAll:       "/api/test/all",
	iface.BoardUser:      "/api/test/user",
	iface.BoardModerator: "/api/test/mod",
	iface.BoardAdmin:     "/api/test/admin",
}

// contentService implements iface.ContentService
type contentService struct {
	client *api.Client
}

// NewContentService creates a new content service
func NewContentService(client *api.Client) iface.ContentService {
	return &contentService{client: client}
}

// Board returns the content of the named board
func (s *contentService) Board(ctx context.Context, name string) (iface.Content, error) {
	path, ok := boardPaths[name]
	if !ok {
		return nil, fmt.Errorf("unknown board %q (valid: %v)", name, iface.Boards)
	}
	return s.get(ctx, path)
}

// Whoami returns the server view of the current session
func (s *contentService) Whoami(ctx context.Context) (iface.Content, error) {
	return s.get(ctx, "/whoami")
}

// Sessions returns the active sessions of the current user
func (s *contentService) Sessions(ctx context.Context) (iface.Content, error) {
	return s.get(ctx, "/sessions")
}

// CreateTodo creates a todo owned by the current user
func (s *contentService) CreateTodo(ctx context.Context, title, body string) (*iface.Todo, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	var todo iface.Todo
	if err := s.client.Post(ctx, "/todo", &iface.Todo{Title: title, Body: body}, &todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return &todo, nil
}

func (s *contentService) get(ctx context.Context, path string) (iface.Content, error) {
	content := iface.Content{}
	if err := s.client.Get(ctx, path, &content); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return nil, fmt.Errorf("%s is not served by %s: %w", path, s.client.BaseURL(), err)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return content, nil
}
