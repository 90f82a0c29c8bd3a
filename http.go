package auth

import (
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

// CookieSession moves token pairs in and out of HTTP cookies. Both
// cookies are HTTPOnly; the access token additionally falls back to the
// Authorization header for non browser clients.
type CookieSession struct {
	cfg    Config
	Logger Logger
}

func NewCookieSession(cfg Config) *CookieSession {
	return &CookieSession{
		cfg:    cfg,
		Logger: defLogger{},
	}
}

// WriteSessionCookies stores both tokens of a pair
func (s *CookieSession) WriteSessionCookies(c router.Context, pair *TokenPair) {
	s.setCookieToken(c, s.cfg.GetAccessCookieName(), pair.AccessToken, pair.AccessExpiresAt)
	s.setCookieToken(c, s.cfg.GetRefreshCookieName(), pair.RefreshToken, pair.RefreshExpiresAt)
}

// WriteAccessCookie stores a fresh access token, leaving the refresh
// cookie untouched. Used after a successful refresh.
func (s *CookieSession) WriteAccessCookie(c router.Context, token string, expiresAt time.Time) {
	s.setCookieToken(c, s.cfg.GetAccessCookieName(), token, expiresAt)
}

// ClearSessionCookies expires both cookies
func (s *CookieSession) ClearSessionCookies(c router.Context) {
	s.cookieDel(c, s.cfg.GetAccessCookieName())
	s.cookieDel(c, s.cfg.GetRefreshCookieName())
}

// AccessTokenFromContext looks for the raw access token using the
// configured token lookup, e.g. "cookie:access_token,header:Authorization".
func (s *CookieSession) AccessTokenFromContext(c router.Context) string {
	lookup := s.cfg.GetTokenLookup()
	if lookup == "" {
		lookup = "cookie:" + s.cfg.GetAccessCookieName()
	}

	for _, source := range strings.Split(lookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(source), ":", 2)
		if len(parts) != 2 {
			continue
		}

		var token string
		switch parts[0] {
		case "cookie":
			token = c.Cookies(parts[1])
		case "header":
			token = tokenFromHeader(c.GetString(parts[1], ""), s.cfg.GetAuthScheme())
		}

		if token != "" {
			return token
		}
	}

	return ""
}

// RefreshTokenFromContext reads the refresh cookie. Refresh tokens are
// never accepted from headers.
func (s *CookieSession) RefreshTokenFromContext(c router.Context) string {
	return c.Cookies(s.cfg.GetRefreshCookieName())
}

func (s *CookieSession) setCookieToken(c router.Context, name, val string, expiresAt time.Time) {
	// Max-Age carries the token lifetime in seconds; Expires stays as a
	// fallback for clients that ignore Max-Age
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    val,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.GetCookieSecure(),
		SameSite: "Lax",
	})
}

func (s *CookieSession) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.cfg.GetCookieSecure(),
		SameSite: "Lax",
	})
}

func tokenFromHeader(header, authScheme string) string {
	if header == "" {
		return ""
	}
	if authScheme == "" {
		return strings.TrimSpace(header)
	}
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:])
	}
	return ""
}
