package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenUseAccess marks tokens accepted by request authentication
	TokenUseAccess = "access"
	// TokenUseRefresh marks tokens accepted only by the refresh endpoint
	TokenUseRefresh = "refresh"
)

// JWTClaims is the payload carried by both access and refresh tokens.
// TokenUse keeps the two classes from being interchangeable.
type JWTClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"unm,omitempty"`
	Email    string `json:"eml,omitempty"`
	TokenUse string `json:"token_use"`
}

// NewClaims builds the claim set for an identity. Every token gets a
// fresh uuid jti; revocation is keyed by that id.
func NewClaims(cfg Config, identity Identity, tokenUse string, ttl time.Duration) *JWTClaims {
	now := time.Now()
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID(),
			Issuer:    cfg.GetIssuer(),
			Audience:  cfg.GetAudience(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   identity.ID(),
		Username: identity.Username(),
		Email:    identity.Email(),
		TokenUse: tokenUse,
	}
}

// GetUserID returns the id of the identity the token was minted for
func (c *JWTClaims) GetUserID() string {
	return c.UserID
}

// TokenID returns the jti, minting one if the claims were built by hand
func (c *JWTClaims) TokenID() string {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return c.ID
}

func (c *JWTClaims) Expiration() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *JWTClaims) IsExpired() bool {
	exp := c.Expiration()
	if exp.IsZero() {
		return false
	}
	return exp.Before(time.Now())
}
