package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return database.NewGormAdapter(db)
}

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret", time.Hour, 24*time.Hour, 15*time.Minute)
}

// seedOrganization creates an organization for tenant-scoped tests.
func seedOrganization(t *testing.T, db database.Database, slug string) *models.Organization {
	t.Helper()

	org := models.Organization{Name: "Test " + slug, Slug: slug}
	if err := db.DB().Create(&org).Error; err != nil {
		t.Fatalf("failed to seed organization: %v", err)
	}
	return &org
}

func seedAgent(t *testing.T, db database.Database, orgID uint) *models.Agent {
	t.Helper()

	agent := models.Agent{
		OrganizationID: orgID,
		Name:           "Support Agent",
		Instructions:   "Be helpful.",
		Temperature:    0.7,
		IsActive:       true,
	}
	if err := db.DB().Create(&agent).Error; err != nil {
		t.Fatalf("failed to seed agent: %v", err)
	}
	return &agent
}

func seedIntegration(t *testing.T, db database.Database, orgID uint, integrationType models.IntegrationType) *models.Integration {
	t.Helper()

	integration := models.Integration{
		OrganizationID: orgID,
		Type:           integrationType,
		Name:           string(integrationType) + " integration",
		IsActive:       true,
	}
	if err := db.DB().Create(&integration).Error; err != nil {
		t.Fatalf("failed to seed integration: %v", err)
	}
	return &integration
}
