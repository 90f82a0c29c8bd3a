package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/amalnian/Book-Management"
)

func TestNewClaims(t *testing.T) {
	cfg := newTestConfig()
	identity := testIdentity{id: "user-123", username: "tester", email: "tester@example.com"}

	claims := auth.NewClaims(cfg, identity, auth.TokenUseRefresh, time.Hour)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "tester", claims.Username)
	assert.Equal(t, "tester@example.com", claims.Email)
	assert.Equal(t, auth.TokenUseRefresh, claims.TokenUse)
	assert.Equal(t, cfg.issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)

	t.Run("jti is unique per claim set", func(t *testing.T) {
		other := auth.NewClaims(cfg, identity, auth.TokenUseRefresh, time.Hour)
		assert.NotEqual(t, claims.ID, other.ID)
	})
}

func TestJWTClaims_TokenID(t *testing.T) {
	claims := &auth.JWTClaims{}

	id := claims.TokenID()
	assert.NotEmpty(t, id)
	// stable once minted
	assert.Equal(t, id, claims.TokenID())
}

func TestJWTClaims_Expiration(t *testing.T) {
	t.Run("zero without expiry", func(t *testing.T) {
		claims := &auth.JWTClaims{}
		assert.True(t, claims.Expiration().IsZero())
		assert.False(t, claims.IsExpired())
	})

	t.Run("reports expiry", func(t *testing.T) {
		cfg := newTestConfig()
		identity := testIdentity{id: "user-123"}

		live := auth.NewClaims(cfg, identity, auth.TokenUseAccess, time.Hour)
		assert.False(t, live.IsExpired())

		dead := auth.NewClaims(cfg, identity, auth.TokenUseAccess, -time.Hour)
		assert.True(t, dead.IsExpired())
	})
}

func TestJWTClaims_GetUserID(t *testing.T) {
	claims := &auth.JWTClaims{UserID: "user-42"}
	assert.Equal(t, "user-42", claims.GetUserID())
}
