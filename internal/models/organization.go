package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        string         `gorm:"type:varchar(36);unique" json:"uuid"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	Slug        string         `gorm:"type:varchar(100);unique;not null" json:"slug" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	Settings    JSON           `gorm:"type:jsonb" json:"settings"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Users        []User        `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
	Agents       []Agent       `gorm:"foreignKey:OrganizationID" json:"agents,omitempty"`
	Integrations []Integration `gorm:"foreignKey:OrganizationID" json:"integrations,omitempty"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == "" {
		o.UUID = uuid.New().String()
	}
	return nil
}

func (o *Organization) TableName() string {
	return "organizations"
}
