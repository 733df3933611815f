package api

import (
	"net/url"
	"strings"
)

// Endpoints lists the authentication paths of an authr server
type Endpoints struct {
	Login    string
	Logout   string
	Register string
	Refresh  string
}

// DefaultEndpoints returns the paths served by a stock authr server
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:    "/login",
		Logout:   "/logout",
		Register: "/register",
		Refresh:  "/refresh",
	}
}

// IsLogin reports whether path targets the login endpoint
func (e Endpoints) IsLogin(path string) bool {
	return samePath(path, e.Login)
}

// IsRefresh reports whether path targets the refresh endpoint
func (e Endpoints) IsRefresh(path string) bool {
	return samePath(path, e.Refresh)
}

func samePath(path, endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(path, "://") {
		u, err := url.Parse(path)
		if err != nil {
			return false
		}
		path = u.Path
	} else if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.TrimRight(path, "/") == strings.TrimRight(endpoint, "/")
}
