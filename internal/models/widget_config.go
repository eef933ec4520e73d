package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// WidgetConfig holds per-agent settings for the embeddable chat
// widget: appearance plus the domain allowlist the widget auth
// endpoint enforces. One per agent.
type WidgetConfig struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	AgentID            uint           `gorm:"not null;uniqueIndex" json:"agent_id"`
	Title              string         `gorm:"type:varchar(255);default:'Chat with us'" json:"title"`
	Greeting           string         `gorm:"type:text" json:"greeting"`
	PrimaryColor       string         `gorm:"type:varchar(20);default:'#4F46E5'" json:"primary_color"`
	Position           string         `gorm:"type:varchar(20);default:'bottom-right'" json:"position"`
	AllowedDomains     pq.StringArray `gorm:"type:text[]" json:"allowed_domains"`
	RequireDomainMatch bool           `gorm:"default:true" json:"require_domain_match"`
	IsEnabled          bool           `gorm:"default:true" json:"is_enabled"`
	CreatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Agent Agent `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (w *WidgetConfig) TableName() string {
	return "widget_configs"
}

// DomainAllowed checks a requesting domain against the allowlist.
// Entries are matched case-insensitively; a "*.example.com" entry
// admits any direct or nested subdomain of example.com but not
// example.com itself, and never a lookalike suffix such as
// "example.com.evil.io".
func (w *WidgetConfig) DomainAllowed(domain string) bool {
	if !w.RequireDomainMatch {
		return true
	}

	domain = normalizeDomain(domain)
	if domain == "" {
		return false
	}

	for _, entry := range w.AllowedDomains {
		entry = normalizeDomain(entry)
		if entry == "" {
			continue
		}
		if base, ok := strings.CutPrefix(entry, "*."); ok {
			if strings.HasSuffix(domain, "."+base) {
				return true
			}
			continue
		}
		if domain == entry {
			return true
		}
	}
	return false
}

func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	if idx := strings.IndexAny(domain, "/:"); idx >= 0 {
		domain = domain[:idx]
	}
	return strings.TrimSuffix(domain, ".")
}
