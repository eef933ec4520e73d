package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Agent struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:varchar(36);unique" json:"uuid"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	Instructions   string         `gorm:"type:text" json:"instructions"`
	Model          string         `gorm:"type:varchar(100);default:'gpt-4o-mini'" json:"model"`
	Temperature    float32        `gorm:"default:0.7" json:"temperature"`
	MaxTokens      int            `gorm:"default:2000" json:"max_tokens"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	Settings       JSON           `gorm:"type:jsonb" json:"settings"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization      Organization       `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	AgentIntegrations []AgentIntegration `gorm:"foreignKey:AgentID" json:"agent_integrations,omitempty"`
	WidgetConfig      *WidgetConfig      `gorm:"foreignKey:AgentID" json:"widget_config,omitempty"`
	Conversations     []Conversation     `gorm:"foreignKey:AgentID" json:"conversations,omitempty"`
}

func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}

func (a *Agent) TableName() string {
	return "agents"
}

// AgentIntegration links an agent to one of its organization's
// integrations and records which of the integration's tools the agent
// may call. Unique per (agent_id, integration_id).
type AgentIntegration struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AgentID       uint           `gorm:"not null;uniqueIndex:idx_agent_integration" json:"agent_id"`
	IntegrationID uint           `gorm:"not null;uniqueIndex:idx_agent_integration" json:"integration_id"`
	SelectedTools pq.StringArray `gorm:"type:text[]" json:"selected_tools"`
	IsEnabled     bool           `gorm:"default:true" json:"is_enabled"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Agent       Agent       `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Integration Integration `gorm:"foreignKey:IntegrationID" json:"integration,omitempty"`
}

func (ai *AgentIntegration) TableName() string {
	return "agent_integrations"
}

// AllowsTool reports whether the link exposes the named tool. An empty
// SelectedTools list exposes every tool the integration offers.
func (ai *AgentIntegration) AllowsTool(name string) bool {
	if !ai.IsEnabled {
		return false
	}
	if len(ai.SelectedTools) == 0 {
		return true
	}
	for _, t := range ai.SelectedTools {
		if t == name {
			return true
		}
	}
	return false
}
