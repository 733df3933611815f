package config

import (
	"fmt"
	"time"

	"github.com/authr-project/authr-cli/internal/api"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Settings holds runtime options read from the environment (and an optional .env file)
type Settings struct {
	APIURL     string        `env:"AUTHR_API_URL"`
	ConfigPath string        `env:"AUTHR_CONFIG_PATH"`
	LogLevel   string        `env:"AUTHR_LOG_LEVEL" envDefault:"info"`
	Timeout    time.Duration `env:"AUTHR_TIMEOUT" envDefault:"30s"`

	// CoalesceRefresh shares one refresh between concurrent 401 responses
	CoalesceRefresh bool `env:"AUTHR_COALESCE_REFRESH" envDefault:"true"`

	LoginPath    string `env:"AUTHR_LOGIN_PATH" envDefault:"/login"`
	LogoutPath   string `env:"AUTHR_LOGOUT_PATH" envDefault:"/logout"`
	RegisterPath string `env:"AUTHR_REGISTER_PATH" envDefault:"/register"`
	RefreshPath  string `env:"AUTHR_REFRESH_PATH" envDefault:"/refresh"`
}

// LoadSettings reads .env when present, then parses the environment
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	settings := &Settings{}
	if err := env.Parse(settings); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if settings.Timeout <= 0 {
		settings.Timeout = api.DefaultTimeout
	}
	return settings, nil
}

// Endpoints returns the configured authentication paths
func (s *Settings) Endpoints() api.Endpoints {
	return api.Endpoints{
		Login:    s.LoginPath,
		Logout:   s.LogoutPath,
		Register: s.RegisterPath,
		Refresh:  s.RefreshPath,
	}
}

// ResolveAPIURL picks the API URL: explicit setting, then the one stored at login, then the default
func (s *Settings) ResolveAPIURL(stored string) string {
	switch {
	case s.APIURL != "":
		return s.APIURL
	case stored != "":
		return stored
	default:
		return DefaultAPIURL
	}
}
