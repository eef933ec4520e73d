package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "agent-cs-api"

// Token types discriminate the claim sets so tokens signed under the
// shared secret are never interchangeable.
const (
	tokenTypeAccess     = "access"
	tokenTypeRefresh    = "refresh"
	tokenTypeWidget     = "widget"
	tokenTypeOAuthState = "oauth_state"
)

// JWTService signs and validates the dashboard access/refresh token
// pair and the short-lived widget session tokens.
type JWTService struct {
	secret         []byte
	expiry         time.Duration
	refreshExpiry  time.Duration
	widgetTokenTTL time.Duration
}

type AccessClaims struct {
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

// WidgetClaims authorize an embedded widget session for one agent on
// one domain.
type WidgetClaims struct {
	AgentUUID string `json:"agent_uuid"`
	Domain    string `json:"domain"`
	SessionID string `json:"session_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string, expiry, refreshExpiry, widgetTokenTTL time.Duration) *JWTService {
	return &JWTService{
		secret:         []byte(secret),
		expiry:         expiry,
		refreshExpiry:  refreshExpiry,
		widgetTokenTTL: widgetTokenTTL,
	}
}

func (s *JWTService) GenerateAccessToken(userID, orgID uint, email, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:         userID,
		OrganizationID: orgID,
		Email:          email,
		Role:           role,
		TokenType:      tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", userID),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) GenerateRefreshToken(userID, orgID uint) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID:         userID,
		OrganizationID: orgID,
		TokenType:      tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", userID),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("token is not an access token")
	}
	return claims, nil
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid refresh token")
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, errors.New("token is not a refresh token")
	}
	return claims, nil
}

// RefreshTokenPair exchanges a valid refresh token for a new
// access/refresh pair.
func (s *JWTService) RefreshTokenPair(refreshToken string) (accessToken, newRefreshToken string, err error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	accessToken, err = s.GenerateAccessToken(claims.UserID, claims.OrganizationID, "", "")
	if err != nil {
		return "", "", err
	}

	newRefreshToken, err = s.GenerateRefreshToken(claims.UserID, claims.OrganizationID)
	if err != nil {
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// GenerateWidgetToken signs a session token binding the widget to one
// agent and the submitted domain for the configured TTL.
func (s *JWTService) GenerateWidgetToken(agentUUID, domain string) (token string, sessionID string, expiresAt time.Time, err error) {
	now := time.Now()
	sessionID = uuid.New().String()
	expiresAt = now.Add(s.widgetTokenTTL)

	claims := WidgetClaims{
		AgentUUID: agentUUID,
		Domain:    domain,
		SessionID: sessionID,
		TokenType: tokenTypeWidget,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   agentUUID,
			ID:        sessionID,
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return token, sessionID, expiresAt, err
}

func (s *JWTService) ValidateWidgetToken(tokenString string) (*WidgetClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &WidgetClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*WidgetClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid widget token")
	}
	if claims.TokenType != tokenTypeWidget {
		return nil, errors.New("token is not a widget session token")
	}
	return claims, nil
}

// OAuthStateClaims bind an OAuth install flow to the organization that
// started it.
type OAuthStateClaims struct {
	OrganizationID uint   `json:"organization_id"`
	Shop           string `json:"shop"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateStateToken signs a short-lived state parameter for the
// Shopify install flow.
func (s *JWTService) GenerateStateToken(orgID uint, shop string) (string, error) {
	now := time.Now()
	claims := OAuthStateClaims{
		OrganizationID: orgID,
		Shop:           shop,
		TokenType:      tokenTypeOAuthState,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			ID:        uuid.New().String(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) ValidateStateToken(tokenString string) (*OAuthStateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OAuthStateClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*OAuthStateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid state token")
	}
	if claims.TokenType != tokenTypeOAuthState {
		return nil, errors.New("token is not an install state token")
	}
	return claims, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}
