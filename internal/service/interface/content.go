package iface

import (
	"context"
	"fmt"
)

// Board names accepted by ContentService.Board
const (
	BoardAll       = "all"
	BoardUser      = "user"
	BoardModerator = "mod"
	BoardAdmin     = "admin"
)

// Boards lists the board names in display order
var Boards = []string{BoardAll, BoardUser, BoardModerator, BoardAdmin}

// Content is a JSON document returned by an authr resource endpoint.
// It always has "code" and "message" and may carry token claims.
type Content map[string]interface{}

// Message returns the "message" field
func (c Content) Message() string {
	if v, ok := c["message"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// Todo represents a todo item
type Todo struct {
	UserID string `json:"user_id,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// ContentService defines the interface for protected resource operations
type ContentService interface {
	// Board returns the content of the named board (all, user, mod, admin)
	Board(ctx context.Context, name string) (Content, error)

	// Whoami returns the server view of the current session
	Whoami(ctx context.Context) (Content, error)

	// Sessions returns the active sessions of the current user
	Sessions(ctx context.Context) (Content, error)

	// CreateTodo creates a todo owned by the current user
	CreateTodo(ctx context.Context, title, body string) (*Todo, error)
}
