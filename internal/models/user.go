package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:varchar(36);unique" json:"uuid"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	Email          string         `gorm:"type:varchar(255);not null;unique" json:"email" validate:"required,email"`
	PasswordHash   string         `gorm:"type:varchar(255)" json:"-"`
	FirstName      string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string         `gorm:"type:varchar(100)" json:"last_name"`
	Role           string         `gorm:"type:varchar(50);default:user" json:"role"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	Settings       JSON           `gorm:"type:jsonb" json:"settings"`
	LastLoginAt    *time.Time     `json:"last_login_at"`
	ExternalID     *string        `gorm:"type:varchar(255);index" json:"external_id"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.New().String()
	}
	return nil
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
