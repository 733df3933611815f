// Package config provides configuration management for the authr CLI.
// It handles reading and writing credentials to the config file and
// loading runtime settings from the environment.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/authr-project/authr-cli/internal/token"
)

const (
	// DefaultAPIURL is the default authr API endpoint
	DefaultAPIURL = "http://localhost:8080"

	// ConfigDirName is the name of the config directory
	ConfigDirName = ".authr"

	// ConfigFileName is the name of the credentials file
	ConfigFileName = "credentials.json"
)

// Config represents the CLI state stored on disk
type Config struct {
	// APIURL is the base URL of the authr API the user logged in to
	APIURL string `json:"api_url,omitempty"`

	// User is the logged in user with its access and refresh tokens
	User *token.User `json:"user,omitempty"`
}

// Manager handles configuration file operations.
// It implements token.Store so the request pipeline reads credentials straight from disk.
type Manager struct {
	configPath string
	mu         sync.Mutex
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(homeDir, ConfigDirName, ConfigFileName)
	return &Manager{configPath: configPath}, nil
}

// NewManagerWithPath creates a new configuration manager with a custom path
// This is useful for testing
func NewManagerWithPath(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Load reads the configuration from disk
// Returns an empty config if the file doesn't exist
func (m *Manager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manager) load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (m *Manager) save(config *Config) error {
	// Ensure the config directory exists
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// Write with restricted permissions (owner read/write only)
	return os.WriteFile(m.configPath, data, 0600)
}

// update applies fn to the stored config under the manager lock
func (m *Manager) update(fn func(config *Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	config, err := m.load()
	if err != nil {
		return err
	}
	fn(config)
	return m.save(config)
}

// GetAPIURL returns the API URL stored at login time
func (m *Manager) GetAPIURL() (string, error) {
	config, err := m.Load()
	if err != nil {
		return "", err
	}
	return config.APIURL, nil
}

// SaveAPIURL remembers the API URL credentials were issued by
func (m *Manager) SaveAPIURL(apiURL string) error {
	return m.update(func(config *Config) {
		config.APIURL = apiURL
	})
}

// ConfigPath returns the path to the config file
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// AccessToken returns the stored access token
func (m *Manager) AccessToken() (string, error) {
	user, err := m.User()
	if err != nil || user == nil {
		return "", err
	}
	return user.AccessToken, nil
}

// RefreshToken returns the stored refresh token
func (m *Manager) RefreshToken() (string, error) {
	user, err := m.User()
	if err != nil || user == nil {
		return "", err
	}
	return user.RefreshToken, nil
}

// User returns the stored user
func (m *Manager) User() (*token.User, error) {
	config, err := m.Load()
	if err != nil {
		return nil, err
	}
	return config.User, nil
}

// SetUser saves user with its tokens
func (m *Manager) SetUser(user *token.User) error {
	return m.update(func(config *Config) {
		config.User = user
	})
}

// UpdateAccessToken replaces the stored access token
func (m *Manager) UpdateAccessToken(accessToken string) error {
	return m.update(func(config *Config) {
		if config.User == nil {
			config.User = &token.User{}
		}
		config.User.AccessToken = accessToken
	})
}

// UpdateRefreshToken replaces the stored refresh token
func (m *Manager) UpdateRefreshToken(refreshToken string) error {
	return m.update(func(config *Config) {
		if config.User == nil {
			config.User = &token.User{}
		}
		config.User.RefreshToken = refreshToken
	})
}

// RemoveUser clears the user and its tokens, keeping the API URL
func (m *Manager) RemoveUser() error {
	return m.update(func(config *Config) {
		config.User = nil
	})
}

var _ token.Store = (*Manager)(nil)
