package services

import (
	"context"

	"github.com/lib/pq"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type AgentService struct {
	db database.Database
}

func NewAgentService(db database.Database) *AgentService {
	return &AgentService{db: db}
}

func (s *AgentService) Create(ctx context.Context, agent *models.Agent) error {
	if err := utils.ValidateAgentName(agent.Name); err != nil {
		return NewValidationError("%s", err.Error())
	}
	if agent.Temperature < 0 || agent.Temperature > 2 {
		return NewValidationError("temperature must be between 0 and 2")
	}
	if agent.MaxTokens < 0 {
		return NewValidationError("max_tokens must not be negative")
	}

	if err := s.db.DB().WithContext(ctx).Create(agent).Error; err != nil {
		return translateDBError(err, "agent")
	}
	return nil
}

func (s *AgentService) Get(ctx context.Context, orgID, agentID uint) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", agentID, orgID).
		First(&agent).Error
	if err != nil {
		return nil, translateDBError(err, "agent")
	}
	return &agent, nil
}

// GetByUUID resolves an agent by its public identifier. Used by the
// widget endpoints, which never see numeric IDs.
func (s *AgentService) GetByUUID(ctx context.Context, agentUUID string) (*models.Agent, error) {
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

func (s *AgentService) List(ctx context.Context, orgID uint, limit, offset int) ([]models.Agent, int64, error) {
	var agents []models.Agent
	var total int64

	db := s.db.DB().WithContext(ctx).Model(&models.Agent{}).Where("organization_id = ?", orgID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err, "agent")
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&agents).Error
	if err != nil {
		return nil, 0, translateDBError(err, "agent")
	}
	return agents, total, nil
}

func (s *AgentService) Update(ctx context.Context, orgID, agentID uint, updates map[string]interface{}) (*models.Agent, error) {
	updates = filterUpdates(updates, "name", "instructions", "model", "temperature", "max_tokens", "is_active", "settings")
	if name, ok := updates["name"].(string); ok {
		if err := utils.ValidateAgentName(name); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
	}
	if temp, ok := updates["temperature"].(float64); ok && (temp < 0 || temp > 2) {
		return nil, NewValidationError("temperature must be between 0 and 2")
	}

	agent, err := s.Get(ctx, orgID, agentID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return agent, nil
	}

	if err := s.db.DB().WithContext(ctx).Model(agent).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, "agent")
	}
	return s.Get(ctx, orgID, agentID)
}

func (s *AgentService) Delete(ctx context.Context, orgID, agentID uint) error {
	if _, err := s.Get(ctx, orgID, agentID); err != nil {
		return err
	}

	err := s.db.DB().WithContext(ctx).Where("id = ?", agentID).Delete(&models.Agent{}).Error
	if err != nil {
		return translateDBError(err, "agent")
	}
	return nil
}

// AttachIntegration links an integration to an agent. The integration
// must belong to the same organization; duplicates return Conflict.
func (s *AgentService) AttachIntegration(ctx context.Context, orgID, agentID, integrationID uint, selectedTools []string) (*models.AgentIntegration, error) {
	if _, err := s.Get(ctx, orgID, agentID); err != nil {
		return nil, err
	}

	var integration models.Integration
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", integrationID, orgID).
		First(&integration).Error
	if err != nil {
		return nil, translateDBError(err, "integration")
	}

	for _, tool := range selectedTools {
		if !contains(integration.AvailableTools(), tool) {
			return nil, NewValidationError("unknown tool %q for %s integration", tool, integration.Type)
		}
	}

	link := models.AgentIntegration{
		AgentID:       agentID,
		IntegrationID: integrationID,
		SelectedTools: selectedTools,
		IsEnabled:     true,
	}
	if err := s.db.DB().WithContext(ctx).Create(&link).Error; err != nil {
		return nil, translateDBError(err, "agent integration")
	}
	return &link, nil
}

func (s *AgentService) ListIntegrations(ctx context.Context, orgID, agentID uint) ([]models.AgentIntegration, error) {
	if _, err := s.Get(ctx, orgID, agentID); err != nil {
		return nil, err
	}

	var links []models.AgentIntegration
	err := s.db.DB().WithContext(ctx).
		Preload("Integration").
		Where("agent_id = ?", agentID).
		Find(&links).Error
	if err != nil {
		return nil, translateDBError(err, "agent integration")
	}
	return links, nil
}

// UpdateIntegration rewrites the tool selection and enabled flag on an
// agent's integration link. A nil selectedTools leaves the selection
// untouched; an empty slice clears it.
func (s *AgentService) UpdateIntegration(ctx context.Context, orgID, agentID, integrationID uint, selectedTools []string, isEnabled *bool) (*models.AgentIntegration, error) {
	link, err := s.getLink(ctx, orgID, agentID, integrationID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if selectedTools != nil {
		for _, tool := range selectedTools {
			if !contains(link.Integration.AvailableTools(), tool) {
				return nil, NewValidationError("unknown tool %q for %s integration", tool, link.Integration.Type)
			}
		}
		updates["selected_tools"] = pq.StringArray(selectedTools)
	}
	if isEnabled != nil {
		updates["is_enabled"] = *isEnabled
	}
	if len(updates) == 0 {
		return link, nil
	}

	if err := s.db.DB().WithContext(ctx).Model(link).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, "agent integration")
	}
	return s.getLink(ctx, orgID, agentID, integrationID)
}

func (s *AgentService) DetachIntegration(ctx context.Context, orgID, agentID, integrationID uint) error {
	link, err := s.getLink(ctx, orgID, agentID, integrationID)
	if err != nil {
		return err
	}

	err = s.db.DB().WithContext(ctx).Delete(link).Error
	if err != nil {
		return translateDBError(err, "agent integration")
	}
	return nil
}

// EnabledIntegrations returns the agent's enabled links with their
// integrations preloaded, for tool resolution at chat time.
func (s *AgentService) EnabledIntegrations(ctx context.Context, agentID uint) ([]models.AgentIntegration, error) {
	var links []models.AgentIntegration
	err := s.db.DB().WithContext(ctx).
		Preload("Integration").
		Where("agent_id = ? AND is_enabled = ?", agentID, true).
		Find(&links).Error
	if err != nil {
		return nil, translateDBError(err, "agent integration")
	}
	return links, nil
}

func (s *AgentService) getLink(ctx context.Context, orgID, agentID, integrationID uint) (*models.AgentIntegration, error) {
	if _, err := s.Get(ctx, orgID, agentID); err != nil {
		return nil, err
	}

	var link models.AgentIntegration
	err := s.db.DB().WithContext(ctx).
		Preload("Integration").
		Where("agent_id = ? AND integration_id = ?", agentID, integrationID).
		First(&link).Error
	if err != nil {
		return nil, translateDBError(err, "agent integration")
	}
	return &link, nil
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
