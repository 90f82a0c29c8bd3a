package auth_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/amalnian/Book-Management"
)

var testUserID = uuid.MustParse("0195c3a1-9f3e-7cc8-b6f4-111111111111")

// testConfig implements auth.Config with values suitable for tests
type testConfig struct {
	signingKey    string
	signingMethod string
	issuer        string
	audience      []string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	accessCookie  string
	refreshCookie string
	cookieSecure  bool
	contextKey    string
	tokenLookup   string
	authScheme    string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:    "test-signing-key",
		signingMethod: "HS256",
		issuer:        "test-issuer",
		audience:      []string{"test-audience"},
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		accessCookie:  "access_token",
		refreshCookie: "refresh_token",
		cookieSecure:  true,
		contextKey:    "user",
		tokenLookup:   "cookie:access_token,header:Authorization",
		authScheme:    "Bearer",
	}
}

func (c *testConfig) GetSigningKey() string              { return c.signingKey }
func (c *testConfig) GetSigningMethod() string           { return c.signingMethod }
func (c *testConfig) GetIssuer() string                  { return c.issuer }
func (c *testConfig) GetAudience() []string              { return c.audience }
func (c *testConfig) GetAccessTokenTTL() time.Duration   { return c.accessTTL }
func (c *testConfig) GetRefreshTokenTTL() time.Duration  { return c.refreshTTL }
func (c *testConfig) GetAccessCookieName() string        { return c.accessCookie }
func (c *testConfig) GetRefreshCookieName() string       { return c.refreshCookie }
func (c *testConfig) GetCookieSecure() bool              { return c.cookieSecure }
func (c *testConfig) GetContextKey() string              { return c.contextKey }
func (c *testConfig) GetTokenLookup() string             { return c.tokenLookup }
func (c *testConfig) GetAuthScheme() string              { return c.authScheme }

// testIdentity implements auth.Identity
type testIdentity struct {
	id       string
	username string
	email    string
}

func (i testIdentity) ID() string       { return i.id }
func (i testIdentity) Username() string { return i.username }
func (i testIdentity) Email() string    { return i.email }

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

// MockLedger implements auth.RevocationLedger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	args := m.Called(ctx, tokenID, expiresAt)
	return args.Error(0)
}

func (m *MockLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
