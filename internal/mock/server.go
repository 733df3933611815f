// Package mock provides an in-process authr server that facilitates testing
// of the client-side authentication flow.
//
// It issues real HS256 tokens, rotates refresh tokens and lets tests expire
// access tokens, reject refreshes and inspect what the client sent.
package mock

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Paths served in addition to the authentication endpoints
const (
	PathAlways401 = "/always-401"
	PathBroken    = "/broken"
)

// Account is a registered user
type Account struct {
	ID       string
	Username string
	Email    string
	Password string
	Roles    []string
}

// Call records one request received by the server
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// Server is a fake authr server
type Server struct {
	*httptest.Server

	// Secret signs issued tokens
	Secret []byte
	// AccessTTL is the lifetime written into access tokens
	AccessTTL time.Duration
	// RefreshDelay is slept inside the refresh handler, to widen race windows
	RefreshDelay time.Duration

	mu            sync.Mutex
	accounts      map[string]*Account
	accessTokens  map[string]string
	refreshTokens map[string]string
	calls         []Call
	rejectRefresh bool
	refreshCalls  atomic.Int32
}

// NewServer starts a server with the given accounts
func NewServer(accounts ...*Account) *Server {
	s := &Server{
		Secret:        []byte("mock-secret"),
		AccessTTL:     30 * time.Minute,
		accounts:      map[string]*Account{},
		accessTokens:  map[string]string{},
		refreshTokens: map[string]string{},
	}
	for _, account := range accounts {
		s.addAccount(account)
	}
	s.Server = httptest.NewServer(s.Router())
	return s
}

func (s *Server) addAccount(account *Account) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	s.accounts[account.Username] = account
}

// Router returns the request router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/login", s.login)
	r.Post("/register", s.register)
	r.Post("/logout", s.logout)
	r.Post("/refresh", s.refresh)
	r.Get("/api/test/all", s.board("PublicContent", false))

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/whoami", s.board("Whoami", true))
		r.Get("/sessions", s.board("Sessions", true))
		r.Get("/api/test/user", s.board("UserBoard", true))
		r.Get("/api/test/mod", s.board("ModeratorBoard", true))
		r.Get("/api/test/admin", s.board("AdminBoard", true))
		r.Post("/todo", s.createTodo)
	})

	r.Get(PathAlways401, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, "unauthorized")
	})
	r.Get(PathBroken, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})
	return r
}

// ExpireAccessTokens invalidates every issued access token; refresh tokens stay valid
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = map[string]string{}
}

// RejectRefresh makes the refresh endpoint answer 401
func (s *Server) RejectRefresh(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectRefresh = reject
}

// RefreshCalls returns how many times the refresh endpoint was hit
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Calls returns the recorded requests for path, all requests when path is empty
func (s *Server) Calls(path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ret []Call
	for _, call := range s.calls {
		if path == "" || call.Path == path {
			ret = append(ret, call)
		}
	}
	return ret
}

// IssueTokens creates a valid token pair for username, as a login would
func (s *Server) IssueTokens(username string) (*TokenDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, errUnknownUser
	}
	return s.issue(account)
}

// TokenDetails is the body returned by login, register and refresh
type TokenDetails struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var args credentials
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, "Invalid json provided")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[args.Username]
	if !ok || account.Password != args.Password {
		writeJSON(w, http.StatusUnauthorized, "Please provide valid login details")
		return
	}
	details, err := s.issue(account)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var args credentials
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, "Invalid json provided")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[args.Username]; exists || args.Username == "" {
		writeJSON(w, http.StatusUnprocessableEntity, "error occurred")
		return
	}
	account := &Account{Username: args.Username, Email: args.Email, Password: args.Password, Roles: []string{"ROLE_USER"}}
	s.addAccount(account)
	details, err := s.issue(account)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if accessToken := bearer(r); accessToken != "" {
		delete(s.accessTokens, accessToken)
	}
	writeJSON(w, http.StatusOK, "Successfully logged out")
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}
	body := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.refreshTokens[body["refresh_token"]]
	if !ok || s.rejectRefresh {
		writeJSON(w, http.StatusUnauthorized, "Refresh token expired")
		return
	}
	delete(s.refreshTokens, body["refresh_token"])
	details, err := s.issue(s.accounts[username])
	if err != nil {
		writeJSON(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

func (s *Server) board(name string, protected bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"code":    http.StatusOK,
			"message": "hello " + name,
		}
		if protected {
			if username, ok := s.owner(bearer(r)); ok {
				data["message"] = "hello " + name + " [" + username + "]"
				data["username"] = username
			}
		}
		writeJSON(w, http.StatusOK, data)
	}
}

type todo struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var td todo
	if err := json.NewDecoder(r.Body).Decode(&td); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}
	username, _ := s.owner(bearer(r))
	s.mu.Lock()
	if account, ok := s.accounts[username]; ok {
		td.UserID = account.ID
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, td)
}

func (s *Server) owner(accessToken string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.accessTokens[accessToken]
	return username, ok
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.owner(bearer(r)); !ok {
			writeJSON(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAndRestore(r)
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// issue must be called with s.mu held
func (s *Server) issue(account *Account) (*TokenDetails, error) {
	now := time.Now()
	accessUUID := uuid.NewString()
	role := strings.Join(account.Roles, ",")

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"access_uuid": accessUUID,
		"user_id":     account.ID,
		"role":        role,
		"exp":         now.Add(s.AccessTTL).Unix(),
	})
	accessToken, err := access.SignedString(s.Secret)
	if err != nil {
		return nil, err
	}
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"refresh_uuid": accessUUID + "++" + account.ID,
		"user_id":      account.ID,
		"role":         role,
		"exp":          now.Add(7 * 24 * time.Hour).Unix(),
	})
	refreshToken, err := refresh.SignedString(s.Secret)
	if err != nil {
		return nil, err
	}

	s.accessTokens[accessToken] = account.Username
	s.refreshTokens[refreshToken] = account.Username
	return &TokenDetails{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		Roles:        account.Roles,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
