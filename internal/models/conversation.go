package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationStatus string

const (
	ConversationStatusActive    ConversationStatus = "active"
	ConversationStatusCompleted ConversationStatus = "completed"
	ConversationStatusFailed    ConversationStatus = "failed"
)

type Conversation struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	UUID           string             `gorm:"type:varchar(36);unique" json:"uuid"`
	OrganizationID uint               `gorm:"not null;index" json:"organization_id"`
	AgentID        uint               `gorm:"not null;index" json:"agent_id"`
	SessionID      string             `gorm:"type:varchar(100);index" json:"session_id"`
	VisitorDomain  string             `gorm:"type:varchar(255)" json:"visitor_domain"`
	Status         ConversationStatus `gorm:"type:varchar(50);default:'active'" json:"status"`
	MessageCount   int                `gorm:"default:0" json:"message_count"`
	LastMessageAt  *time.Time         `json:"last_message_at,omitempty"`
	Metadata       JSON               `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	Agent    Agent     `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ConversationStatusActive
	}
	return nil
}

func (c *Conversation) TableName() string {
	return "conversations"
}

type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	Role           string         `gorm:"type:varchar(50);not null" json:"role" validate:"required,oneof=user assistant system"`
	Content        string         `gorm:"type:text;not null" json:"content" validate:"required"`
	TokenCount     *int           `json:"token_count,omitempty"`
	Metadata       JSON           `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
}

func (m *Message) TableName() string {
	return "messages"
}
