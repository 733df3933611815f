package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names used by authr access tokens
const (
	ClaimUserID     = "user_id"
	ClaimAccessUUID = "access_uuid"
	ClaimRole       = "role"
)

// Claims is the readable part of an access token
type Claims struct {
	UserID     string    `json:"user_id"`
	AccessUUID string    `json:"access_uuid,omitempty"`
	Role       string    `json:"role,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token expiry has passed at now
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the claims of an access token without verifying its signature.
// The client never holds the signing secret; the server stays the authority.
func Inspect(accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, errors.New("empty token")
	}
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, mapClaims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	ret := &Claims{}
	ret.UserID, _ = mapClaims[ClaimUserID].(string)
	ret.AccessUUID, _ = mapClaims[ClaimAccessUUID].(string)
	ret.Role, _ = mapClaims[ClaimRole].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		ret.ExpiresAt = exp.Time
	}
	return ret, nil
}
