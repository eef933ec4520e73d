package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateAccessToken(42, 7, "user@example.com", "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, uint(7), claims.OrganizationID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()

	refresh, err := svc.GenerateRefreshToken(42, 7)
	require.NoError(t, err)

	access, newRefresh, err := svc.RefreshTokenPair(refresh)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)

	refreshClaims, err := svc.ValidateRefreshToken(newRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), refreshClaims.OrganizationID)
}

// Every token kind is signed under the same secret; the token_type
// claim is what keeps them from being interchangeable.
func TestTokenTypeSeparation(t *testing.T) {
	svc := newTestJWTService()

	access, err := svc.GenerateAccessToken(1, 1, "a@b.co", "user")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(1, 1)
	require.NoError(t, err)
	widgetToken, _, _, err := svc.GenerateWidgetToken("agent-uuid", "shop.example.com")
	require.NoError(t, err)
	state, err := svc.GenerateStateToken(1, "acme.myshopify.com")
	require.NoError(t, err)

	t.Run("each kind validates as itself", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(access)
		assert.NoError(t, err)
		_, err = svc.ValidateRefreshToken(refresh)
		assert.NoError(t, err)
		widgetClaims, err := svc.ValidateWidgetToken(widgetToken)
		require.NoError(t, err)
		assert.Equal(t, "agent-uuid", widgetClaims.AgentUUID)
		_, err = svc.ValidateStateToken(state)
		assert.NoError(t, err)
	})

	t.Run("refresh token is not an API credential", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(refresh)
		assert.Error(t, err)
	})

	t.Run("access token cannot be replayed as a refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(access)
		assert.Error(t, err)
	})

	t.Run("access token is not a widget session", func(t *testing.T) {
		_, err := svc.ValidateWidgetToken(access)
		assert.Error(t, err)
	})

	t.Run("widget token grants no dashboard access", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(widgetToken)
		assert.Error(t, err)
	})

	t.Run("state token opens no session", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(state)
		assert.Error(t, err)
		_, err = svc.ValidateWidgetToken(state)
		assert.Error(t, err)
	})
}

func TestExpiredAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, time.Hour, time.Minute)

	token, err := svc.GenerateAccessToken(1, 1, "a@b.co", "user")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("another-secret", time.Hour, time.Hour, time.Minute)

	token, err := other.GenerateAccessToken(1, 1, "a@b.co", "user")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestOAuthStateToken(t *testing.T) {
	svc := newTestJWTService()

	state, err := svc.GenerateStateToken(7, "acme.myshopify.com")
	require.NoError(t, err)

	claims, err := svc.ValidateStateToken(state)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.OrganizationID)
	assert.Equal(t, "acme.myshopify.com", claims.Shop)
}
