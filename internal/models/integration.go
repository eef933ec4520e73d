package models

import (
	"time"

	"gorm.io/gorm"
)

type IntegrationType string

const (
	IntegrationTypeShopify IntegrationType = "shopify"
	IntegrationTypeWebhook IntegrationType = "webhook"
)

// Integration stores a credential/config set for an external service.
// Credentials is an AES-encrypted JSON blob and is never serialized.
// Unique per (organization_id, type).
type Integration struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrganizationID uint            `gorm:"not null;uniqueIndex:idx_org_integration_type" json:"organization_id"`
	Type           IntegrationType `gorm:"type:varchar(50);not null;uniqueIndex:idx_org_integration_type" json:"type" validate:"required,oneof=shopify webhook"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Credentials    string          `gorm:"type:text" json:"-"`
	Settings       JSON            `gorm:"type:jsonb" json:"settings"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	Organization      Organization       `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	AgentIntegrations []AgentIntegration `gorm:"foreignKey:IntegrationID" json:"agent_integrations,omitempty"`
}

func (i *Integration) TableName() string {
	return "integrations"
}

// ShopifyCredentials is the decrypted shape of a Shopify integration's
// credential blob.
type ShopifyCredentials struct {
	ShopDomain  string `json:"shop_domain"`
	AccessToken string `json:"access_token"`
}

// AvailableTools lists the tool names an integration type offers.
func (i *Integration) AvailableTools() []string {
	switch i.Type {
	case IntegrationTypeShopify:
		return []string{"search_products", "get_product", "get_order_status"}
	default:
		return nil
	}
}
