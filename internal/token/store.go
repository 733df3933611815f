// Package token defines the credential model of the authr client and the
// Store abstraction the request pipeline reads tokens from.
package token

// User is the identity returned by login and register, together with its tokens
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles,omitempty"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// HasCredentials reports whether u carries a token to authenticate or refresh with
func (u *User) HasCredentials() bool {
	return u != nil && (u.AccessToken != "" || u.RefreshToken != "")
}

// Store holds the current user and its tokens.
// Getters return an empty string and no error when nothing is stored.
type Store interface {
	// AccessToken returns the stored access token
	AccessToken() (string, error)

	// RefreshToken returns the stored refresh token
	RefreshToken() (string, error)

	// User returns the stored user, or nil when logged out
	User() (*User, error)

	// SetUser replaces the stored user and both tokens
	SetUser(user *User) error

	// UpdateAccessToken replaces the access token of the stored user
	UpdateAccessToken(accessToken string) error

	// UpdateRefreshToken replaces the refresh token of the stored user
	UpdateRefreshToken(refreshToken string) error

	// RemoveUser clears the user and both tokens
	RemoveUser() error
}
