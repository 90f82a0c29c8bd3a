package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// JWTTokenService mints and validates HMAC signed tokens using the
// shared key from Config.
type JWTTokenService struct {
	config Config
}

func NewTokenService(cfg Config) *JWTTokenService {
	return &JWTTokenService{config: cfg}
}

// IssuePair mints an access and refresh token for the identity
func (s *JWTTokenService) IssuePair(identity Identity) (*TokenPair, error) {
	access := NewClaims(s.config, identity, TokenUseAccess, s.config.GetAccessTokenTTL())
	refresh := NewClaims(s.config, identity, TokenUseRefresh, s.config.GetRefreshTokenTTL())

	accessToken, err := s.SignClaims(access)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.SignClaims(refresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  access.Expiration(),
		RefreshExpiresAt: refresh.Expiration(),
	}, nil
}

// IssueAccessToken mints a new access token only, used by refresh
func (s *JWTTokenService) IssueAccessToken(identity Identity) (string, time.Time, error) {
	claims := NewClaims(s.config, identity, TokenUseAccess, s.config.GetAccessTokenTTL())
	token, err := s.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.Expiration(), nil
}

func (s *JWTTokenService) SignClaims(claims *JWTClaims) (string, error) {
	claims.TokenID()

	method := jwt.GetSigningMethod(s.config.GetSigningMethod())
	if method == nil {
		return "", goerrors.New("unknown signing method", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"method": s.config.GetSigningMethod()})
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(s.config.GetSigningKey()))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses and verifies a token, and checks that it was minted
// for the expected use. Signature, expiry, issuer, and audience are all
// enforced.
func (s *JWTTokenService) Validate(tokenString, tokenUse string) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, ErrNoEmptyString
	}

	claims := &JWTClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.config.GetSigningMethod()}),
	}
	if iss := s.config.GetIssuer(); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	if aud := s.config.GetAudience(); len(aud) > 0 {
		opts = append(opts, jwt.WithAudience(aud[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.GetSigningKey()), nil
	}, opts...)

	if err != nil {
		switch {
		case goerrors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case goerrors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "invalid token").
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("INVALID_TOKEN")
		}
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenUse != tokenUse {
		return nil, ErrTokenUseMismatch
	}

	return claims, nil
}
