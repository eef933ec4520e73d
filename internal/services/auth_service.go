package services

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

// AuthService handles dashboard sign-in: local email/password login,
// token refresh, and syncing users from the hosted identity provider.
type AuthService struct {
	cfg   *config.Config
	users *UserService
	orgs  *OrganizationService
	jwt   *JWTService
}

func NewAuthService(cfg *config.Config, users *UserService, orgs *OrganizationService, jwtService *JWTService) *AuthService {
	return &AuthService{
		cfg:   cfg,
		users: users,
		orgs:  orgs,
		jwt:   jwtService,
	}
}

// TokenPair is the response body for login, sync and refresh.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user,omitempty"`
}

// identityClaims are the claims we accept from the identity provider.
type identityClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	OrgSlug   string `json:"org_slug"`
	jwt.RegisteredClaims
}

// Login authenticates an email/password pair and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user)
}

// Refresh exchanges a refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, NewValidationError("invalid refresh token")
	}

	user, err := s.users.Get(ctx, claims.OrganizationID, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, NewValidationError("user account is disabled")
	}

	return s.issuePair(user)
}

// SyncExternal validates an identity-provider token and upserts the
// user it describes, returning our own token pair.
func (s *AuthService) SyncExternal(ctx context.Context, providerToken string) (*TokenPair, error) {
	claims, err := s.validateProviderToken(providerToken)
	if err != nil {
		return nil, err
	}
	if claims.OrgSlug == "" {
		return nil, NewValidationError("token is missing organization")
	}

	org, err := s.orgs.GetBySlug(ctx, claims.OrgSlug)
	if err != nil {
		return nil, err
	}

	user, err := s.users.SyncExternal(ctx, org.ID, claims.Subject, claims.Email, claims.FirstName, claims.LastName)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user)
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.OrganizationID, user.Email, user.Role)
	if err != nil {
		return nil, NewDatabaseError(err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.OrganizationID)
	if err != nil {
		return nil, NewDatabaseError(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) validateProviderToken(tokenString string) (*identityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Identity.JWTSecret), nil
	})
	if err != nil {
		return nil, NewValidationError("invalid identity token")
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return nil, NewValidationError("invalid identity token")
	}

	if s.cfg.Identity.Audience != "" {
		found := false
		for _, aud := range claims.Audience {
			if aud == s.cfg.Identity.Audience {
				found = true
				break
			}
		}
		if !found {
			return nil, NewValidationError("identity token audience mismatch")
		}
	}

	return claims, nil
}
