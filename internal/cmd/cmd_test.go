package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/authr-project/authr-cli/internal/api"
	"github.com/authr-project/authr-cli/internal/di"
	iface "github.com/authr-project/authr-cli/internal/service/interface"
	"github.com/authr-project/authr-cli/internal/token"
	"go.uber.org/zap/zapcore"
)

// MockAuthService is a mock implementation of iface.AuthService
type MockAuthService struct {
	LoginFunc       func(ctx context.Context, username, password string) (*token.User, error)
	RegisterFunc    func(ctx context.Context, username, email, password string) (*token.User, error)
	LogoutFunc      func(ctx context.Context) error
	IsLoggedInFunc  func() bool
	CurrentUserFunc func() (*token.User, error)
	StatusFunc      func() (*iface.Status, error)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*token.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return &token.User{Username: username, AccessToken: "test-token"}, nil
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*token.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, password)
	}
	return &token.User{Username: username, Email: email, AccessToken: "test-token"}, nil
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) IsLoggedIn() bool {
	if m.IsLoggedInFunc != nil {
		return m.IsLoggedInFunc()
	}
	return true
}

func (m *MockAuthService) CurrentUser() (*token.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc()
	}
	return &token.User{Username: "alice"}, nil
}

func (m *MockAuthService) Status() (*iface.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return &iface.Status{}, nil
}

// MockContentService is a mock implementation of iface.ContentService
type MockContentService struct {
	BoardFunc      func(ctx context.Context, name string) (iface.Content, error)
	WhoamiFunc     func(ctx context.Context) (iface.Content, error)
	SessionsFunc   func(ctx context.Context) (iface.Content, error)
	CreateTodoFunc func(ctx context.Context, title, body string) (*iface.Todo, error)
}

func (m *MockContentService) Board(ctx context.Context, name string) (iface.Content, error) {
	if m.BoardFunc != nil {
		return m.BoardFunc(ctx, name)
	}
	return iface.Content{"message": "hello " + name}, nil
}

func (m *MockContentService) Whoami(ctx context.Context) (iface.Content, error) {
	if m.WhoamiFunc != nil {
		return m.WhoamiFunc(ctx)
	}
	return iface.Content{"message": "whoami"}, nil
}

func (m *MockContentService) Sessions(ctx context.Context) (iface.Content, error) {
	if m.SessionsFunc != nil {
		return m.SessionsFunc(ctx)
	}
	return iface.Content{"message": "sessions"}, nil
}

func (m *MockContentService) CreateTodo(ctx context.Context, title, body string) (*iface.Todo, error) {
	if m.CreateTodoFunc != nil {
		return m.CreateTodoFunc(ctx, title, body)
	}
	return &iface.Todo{UserID: "1", Title: title, Body: body}, nil
}

// execute runs the CLI with args against mocked services and returns captured stdout
func execute(t *testing.T, authService iface.AuthService, contentService iface.ContentService, args ...string) (string, error) {
	t.Helper()
	container := di.NewContainerWithServices(authService, contentService)

	root := NewRootCommand()
	root.SetContainer(container)

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	root.Command().SetArgs(args)
	err := root.Command().Execute()

	// Restore stdout and read output
	w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), err
}

func TestLoginCommand_Run(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		loginErr   error
		wantOutput string
		wantErr    bool
	}{
		{
			name:       "logs in with username argument and password flag",
			args:       []string{"login", "alice", "-p", "pw1"},
			wantOutput: "Logged in as alice",
		},
		{
			name:     "returns error when credentials are rejected",
			args:     []string{"login", "alice", "-p", "wrong"},
			loginErr: &api.AuthError{Err: &api.APIError{StatusCode: 401, Message: "Please provide valid login details"}},
			wantErr:  true,
		},
		{
			name:    "rejects extra arguments",
			args:    []string{"login", "alice", "bob", "-p", "pw1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUsername, gotPassword string
			mockAuth := &MockAuthService{
				LoginFunc: func(ctx context.Context, username, password string) (*token.User, error) {
					gotUsername, gotPassword = username, password
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					return &token.User{Username: username, AccessToken: "A1"}, nil
				},
			}

			output, err := execute(t, mockAuth, &MockContentService{}, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if gotUsername != "alice" || gotPassword != "pw1" {
				t.Errorf("Login() called with %q/%q", gotUsername, gotPassword)
			}
			if !strings.Contains(output, tt.wantOutput) {
				t.Errorf("Output should contain %q, got: %s", tt.wantOutput, output)
			}
		})
	}
}

func TestRegisterCommand_Run(t *testing.T) {
	tests := []struct {
		name        string
		accessToken string
		wantOutput  string
	}{
		{
			name:        "registers and logs in",
			accessToken: "A1",
			wantOutput:  "Registered and logged in as bob",
		},
		{
			name:       "registers without session",
			wantOutput: "Log in with: authr login bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &MockAuthService{
				RegisterFunc: func(ctx context.Context, username, email, password string) (*token.User, error) {
					if email != "bob@example.com" || password != "pw2" {
						t.Errorf("Register() called with %q/%q", email, password)
					}
					return &token.User{Username: username, Email: email, AccessToken: tt.accessToken}, nil
				},
			}

			output, err := execute(t, mockAuth, &MockContentService{}, "register", "bob", "bob@example.com", "-p", "pw2")
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !strings.Contains(output, tt.wantOutput) {
				t.Errorf("Output should contain %q, got: %s", tt.wantOutput, output)
			}
		})
	}
}

func TestLogoutCommand_Run(t *testing.T) {
	tests := []struct {
		name       string
		logoutErr  error
		wantOutput string
		wantErr    bool
	}{
		{
			name:       "logs out",
			wantOutput: "Successfully logged out",
		},
		{
			name:      "returns error when not logged in",
			logoutErr: errors.New("not logged in"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &MockAuthService{
				LogoutFunc: func(ctx context.Context) error {
					return tt.logoutErr
				},
			}

			output, err := execute(t, mockAuth, &MockContentService{}, "logout")
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !strings.Contains(output, tt.wantOutput) {
				t.Errorf("Output should contain %q, got: %s", tt.wantOutput, output)
			}
		})
	}
}

func TestStatusCommand_Run(t *testing.T) {
	expiresAt := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name         string
		status       *iface.Status
		outputFormat string
		wantOutput   []string
	}{
		{
			name:       "not logged in",
			status:     &iface.Status{APIURL: "http://localhost:8080"},
			wantOutput: []string{"Not logged in."},
		},
		{
			name: "shows session details",
			status: &iface.Status{
				LoggedIn: true,
				APIURL:   "http://localhost:8080",
				User:     &token.User{Username: "alice", Email: "alice@example.com", Roles: []string{"ROLE_USER", "ROLE_ADMIN"}},
				Claims:   &token.Claims{UserID: "1", ExpiresAt: expiresAt},
			},
			wantOutput: []string{"http://localhost:8080", "alice@example.com", "ROLE_USER, ROLE_ADMIN", "2030-01-02T03:04:05Z (valid)"},
		},
		{
			name: "flags expired token",
			status: &iface.Status{
				LoggedIn: true,
				User:     &token.User{Username: "alice"},
				Claims:   &token.Claims{ExpiresAt: expiresAt},
				Expired:  true,
			},
			wantOutput: []string{"expired, refreshed on next request"},
		},
		{
			name: "outputs JSON format",
			status: &iface.Status{
				LoggedIn: true,
				User:     &token.User{Username: "alice"},
			},
			outputFormat: "json",
			wantOutput:   []string{`"logged_in": true`, `"username": "alice"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &MockAuthService{
				StatusFunc: func() (*iface.Status, error) {
					return tt.status, nil
				},
			}

			args := []string{"status"}
			if tt.outputFormat == "json" {
				args = append(args, "-o", "json")
			}
			output, err := execute(t, mockAuth, &MockContentService{}, args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(output, want) {
					t.Errorf("Output should contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestBoardCommand_Run(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		content       iface.Content
		mockError     error
		wantBoard     string
		wantOutput    []string
		wantNotOutput []string
		wantErr       bool
	}{
		{
			name:          "prints message and extra fields",
			args:          []string{"board", "user"},
			content:       iface.Content{"code": 200, "message": "hello UserBoard [alice]", "username": "alice"},
			wantBoard:     "user",
			wantOutput:    []string{"hello UserBoard [alice]", "username: alice"},
			wantNotOutput: []string{"code:"},
		},
		{
			name:       "outputs JSON format",
			args:       []string{"board", "all", "-o", "json"},
			content:    iface.Content{"message": "hello PublicContent"},
			wantBoard:  "all",
			wantOutput: []string{`"message": "hello PublicContent"`},
		},
		{
			name:      "returns error when refresh fails",
			args:      []string{"board", "admin"},
			mockError: &api.RefreshError{Err: errors.New("expired")},
			wantErr:   true,
		},
		{
			name:    "requires a board name",
			args:    []string{"board"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBoard string
			mockContent := &MockContentService{
				BoardFunc: func(ctx context.Context, name string) (iface.Content, error) {
					gotBoard = name
					if tt.mockError != nil {
						return nil, tt.mockError
					}
					return tt.content, nil
				},
			}

			output, err := execute(t, &MockAuthService{}, mockContent, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if gotBoard != tt.wantBoard {
				t.Errorf("Board() called with %q, want %q", gotBoard, tt.wantBoard)
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(output, want) {
					t.Errorf("Output should contain %q, got: %s", want, output)
				}
			}
			for _, notWant := range tt.wantNotOutput {
				if strings.Contains(output, notWant) {
					t.Errorf("Output should not contain %q, got: %s", notWant, output)
				}
			}
		})
	}
}

func TestWhoamiAndSessionsCommands_Run(t *testing.T) {
	mockContent := &MockContentService{
		WhoamiFunc: func(ctx context.Context) (iface.Content, error) {
			return iface.Content{"message": "hello Whoami [alice]"}, nil
		},
		SessionsFunc: func(ctx context.Context) (iface.Content, error) {
			return iface.Content{"message": "hello Sessions [alice]"}, nil
		},
	}

	output, err := execute(t, &MockAuthService{}, mockContent, "whoami")
	if err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if !strings.Contains(output, "hello Whoami [alice]") {
		t.Errorf("unexpected whoami output: %s", output)
	}

	output, err = execute(t, &MockAuthService{}, mockContent, "sessions")
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	if !strings.Contains(output, "hello Sessions [alice]") {
		t.Errorf("unexpected sessions output: %s", output)
	}
}

func TestTodoCreateCommand_Run(t *testing.T) {
	var gotTitle, gotBody string
	mockContent := &MockContentService{
		CreateTodoFunc: func(ctx context.Context, title, body string) (*iface.Todo, error) {
			gotTitle, gotBody = title, body
			return &iface.Todo{UserID: "42", Title: title, Body: body}, nil
		},
	}

	output, err := execute(t, &MockAuthService{}, mockContent, "todo", "create", "groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gotTitle != "groceries" || gotBody != "milk, eggs" {
		t.Errorf("CreateTodo() called with %q/%q", gotTitle, gotBody)
	}
	if !strings.Contains(output, `Created todo "groceries" for user 42`) {
		t.Errorf("unexpected output: %s", output)
	}

	output, err = execute(t, &MockAuthService{}, mockContent, "todo", "create", "bills", "-o", "json")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, `"title": "bills"`) {
		t.Errorf("unexpected JSON output: %s", output)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	if logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("debug should be disabled at warn level")
	}

	logger, err = newLogger("warn", true)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	if !logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("verbose should enable debug")
	}

	if _, err := newLogger("loud", false); err == nil {
		t.Errorf("newLogger() should reject an unknown level")
	}
}
