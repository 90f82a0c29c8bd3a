package auth

import (
	"context"
	"reflect"
	"time"
)

type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	ledger       RevocationLedger
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, cfg Config) *Auther {
	return &Auther{
		provider:     provider,
		tokenService: NewTokenService(cfg),
		ledger:       NewMemoryLedger(),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService sets a custom token service
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithRevocationLedger sets the ledger used to invalidate refresh tokens
func (s *Auther) WithRevocationLedger(ledger RevocationLedger) *Auther {
	if ledger != nil {
		s.ledger = ledger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login exchanges credentials for a token pair
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, nil, ErrIdentityNotFound
	}

	pair, err := s.tokenService.IssuePair(identity)
	if err != nil {
		s.logger.Error("Login failed to issue token pair", "error", err)
		return nil, nil, err
	}

	return pair, identity, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token keeps working until it expires or is revoked; it is not
// rotated here.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, ErrMissingRefreshToken
	}

	claims, err := s.tokenService.Validate(refreshToken, TokenUseRefresh)
	if err != nil {
		s.logger.Error("Refresh token validation failed", "error", err)
		return "", time.Time{}, err
	}

	revoked, err := s.ledger.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		s.logger.Error("Refresh revocation check failed", "error", err)
		return "", time.Time{}, err
	}
	if revoked {
		return "", time.Time{}, ErrTokenRevoked
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.UserID)
	if err != nil {
		s.logger.Error("Refresh identity lookup failed", "error", err)
		return "", time.Time{}, ErrIdentityNotFound
	}

	return s.tokenService.IssueAccessToken(identity)
}

// Logout revokes the refresh token if it is still valid. Logout never
// fails: a missing, expired, or garbage token still results in the
// caller clearing its session.
func (s *Auther) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	claims, err := s.tokenService.Validate(refreshToken, TokenUseRefresh)
	if err != nil {
		s.logger.Debug("Logout with invalid refresh token", "error", err)
		return
	}

	if err := s.ledger.Revoke(ctx, claims.TokenID(), claims.Expiration()); err != nil {
		s.logger.Warn("Logout failed to revoke token", "error", err)
	}
}

// IdentityFromClaims resolves the identity an access token was minted for
func (s *Auther) IdentityFromClaims(ctx context.Context, claims *JWTClaims) (Identity, error) {
	if claims == nil {
		return nil, ErrIdentityNotFound
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.UserID)
	if err != nil {
		s.logger.Error("IdentityFromClaims lookup failed", "error", err)
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)
