package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// WidgetService implements the embeddable widget flow: per-agent
// widget configuration, the domain-allowlist check, and issuing the
// short-lived session tokens the widget chat endpoint requires.
type WidgetService struct {
	db    database.Database
	jwt   *JWTService
	redis database.RedisClient
}

func NewWidgetService(db database.Database, jwt *JWTService, redis database.RedisClient) *WidgetService {
	return &WidgetService{
		db:    db,
		jwt:   jwt,
		redis: redis,
	}
}

// WidgetSession is the result of a successful widget authentication.
type WidgetSession struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	AgentUUID string    `json:"agent_uuid"`
	Domain    string    `json:"domain"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PublicConfig is the widget appearance payload the embed script
// fetches without authentication. No credentials, no allowlist.
type PublicConfig struct {
	AgentUUID    string `json:"agent_uuid"`
	AgentName    string `json:"agent_name"`
	Title        string `json:"title"`
	Greeting     string `json:"greeting"`
	PrimaryColor string `json:"primary_color"`
	Position     string `json:"position"`
}

// Authenticate validates the agent and the requesting domain against
// the agent's allowlist and signs a session token.
func (s *WidgetService) Authenticate(ctx context.Context, agentUUID, domain string) (*WidgetSession, error) {
	if strings.TrimSpace(agentUUID) == "" {
		return nil, NewValidationError("agent_id is required")
	}
	if strings.TrimSpace(domain) == "" {
		return nil, NewValidationError("domain is required")
	}

	agent, err := s.getAgentByUUID(ctx, agentUUID)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive {
		return nil, NewValidationError("agent is not active")
	}

	cfg := agent.WidgetConfig
	if cfg == nil || !cfg.IsEnabled {
		return nil, NewValidationError("widget is not enabled for this agent")
	}
	if !cfg.DomainAllowed(domain) {
		return nil, NewValidationError("domain %q is not on the widget allowlist", domain)
	}

	token, sessionID, expiresAt, err := s.jwt.GenerateWidgetToken(agent.UUID, domain)
	if err != nil {
		return nil, NewDatabaseError(err)
	}

	// Best-effort session mark; revocation checks degrade to
	// signature-only validation when Redis is absent.
	if s.redis != nil {
		key := widgetSessionKey(sessionID)
		_ = s.redis.Set(ctx, key, agent.UUID, time.Until(expiresAt))
	}

	return &WidgetSession{
		Token:     token,
		SessionID: sessionID,
		AgentUUID: agent.UUID,
		Domain:    domain,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateSession checks a widget token and, when Redis is available,
// rejects revoked sessions.
func (s *WidgetService) ValidateSession(ctx context.Context, token string) (*WidgetClaims, error) {
	claims, err := s.jwt.ValidateWidgetToken(token)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		exists, err := s.redis.Exists(ctx, widgetSessionKey(claims.SessionID))
		if err == nil && exists == 0 {
			return nil, fmt.Errorf("widget session expired or revoked")
		}
	}

	return claims, nil
}

// RevokeSession drops the session mark so the token stops validating
// even before its expiry. No-op without Redis.
func (s *WidgetService) RevokeSession(ctx context.Context, sessionID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Delete(ctx, widgetSessionKey(sessionID))
}

// GetPublicConfig returns the appearance settings for the embed
// script. Available to anyone who knows the agent UUID.
func (s *WidgetService) GetPublicConfig(ctx context.Context, agentUUID string) (*PublicConfig, error) {
	agent, err := s.getAgentByUUID(ctx, agentUUID)
	if err != nil {
		return nil, err
	}

	cfg := agent.WidgetConfig
	if cfg == nil || !cfg.IsEnabled {
		return nil, NewNotFoundError("widget config")
	}

	return &PublicConfig{
		AgentUUID:    agent.UUID,
		AgentName:    agent.Name,
		Title:        cfg.Title,
		Greeting:     cfg.Greeting,
		PrimaryColor: cfg.PrimaryColor,
		Position:     cfg.Position,
	}, nil
}

// GetConfig returns the full widget config for the dashboard.
func (s *WidgetService) GetConfig(ctx context.Context, orgID, agentID uint) (*models.WidgetConfig, error) {
	if err := s.checkAgent(ctx, orgID, agentID); err != nil {
		return nil, err
	}

	var cfg models.WidgetConfig
	err := s.db.DB().WithContext(ctx).Where("agent_id = ?", agentID).First(&cfg).Error
	if err != nil {
		return nil, translateDBError(err, "widget config")
	}
	return &cfg, nil
}

// UpsertConfig creates or replaces the agent's widget config.
func (s *WidgetService) UpsertConfig(ctx context.Context, orgID, agentID uint, input *models.WidgetConfig) (*models.WidgetConfig, error) {
	if err := s.checkAgent(ctx, orgID, agentID); err != nil {
		return nil, err
	}

	for _, entry := range input.AllowedDomains {
		if err := utils.ValidateDomainEntry(entry); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
	}
	if input.PrimaryColor != "" {
		if err := utils.ValidateHexColor(input.PrimaryColor); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
	}

	var cfg models.WidgetConfig
	err := s.db.DB().WithContext(ctx).Where("agent_id = ?", agentID).First(&cfg).Error
	if err == nil {
		updates := map[string]interface{}{
			"title":                input.Title,
			"greeting":             input.Greeting,
			"primary_color":        input.PrimaryColor,
			"position":             input.Position,
			"allowed_domains":      input.AllowedDomains,
			"require_domain_match": input.RequireDomainMatch,
			"is_enabled":           input.IsEnabled,
		}
		if err := s.db.DB().WithContext(ctx).Model(&cfg).Updates(updates).Error; err != nil {
			return nil, translateDBError(err, "widget config")
		}
		return s.GetConfig(ctx, orgID, agentID)
	}

	input.AgentID = agentID
	if err := s.db.DB().WithContext(ctx).Create(input).Error; err != nil {
		return nil, translateDBError(err, "widget config")
	}
	return input, nil
}

func (s *WidgetService) getAgentByUUID(ctx context.Context, agentUUID string) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.DB().WithContext(ctx).
		Preload("WidgetConfig").
		Where("uuid = ?", agentUUID).
		First(&agent).Error
	if err != nil {
		return nil, translateDBError(err, "agent")
	}
	return &agent, nil
}

func (s *WidgetService) checkAgent(ctx context.Context, orgID, agentID uint) error {
	var count int64
	err := s.db.DB().WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ? AND organization_id = ?", agentID, orgID).
		Count(&count).Error
	if err != nil {
		return translateDBError(err, "agent")
	}
	if count == 0 {
		return NewNotFoundError("agent")
	}
	return nil
}

func widgetSessionKey(sessionID string) string {
	return "widget:session:" + sessionID
}
