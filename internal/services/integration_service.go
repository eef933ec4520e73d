package services

import (
	"context"
	"strings"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

type IntegrationService struct {
	db         database.Database
	encryption *EncryptionService
}

func NewIntegrationService(db database.Database, encryption *EncryptionService) *IntegrationService {
	return &IntegrationService{
		db:         db,
		encryption: encryption,
	}
}

type CreateIntegrationInput struct {
	OrganizationID uint
	Type           models.IntegrationType
	Name           string
	Credentials    map[string]interface{}
	Settings       models.JSON
}

func (s *IntegrationService) Create(ctx context.Context, input *CreateIntegrationInput) (*models.Integration, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("integration name is required")
	}
	if input.Type == "" {
		return nil, NewValidationError("integration type is required")
	}

	var existing models.Integration
	err := s.db.DB().WithContext(ctx).
		Where("organization_id = ? AND type = ?", input.OrganizationID, input.Type).
		First(&existing).Error
	if err == nil {
		return nil, NewConflictError("a %s integration already exists for this organization", input.Type)
	}

	integration := models.Integration{
		OrganizationID: input.OrganizationID,
		Type:           input.Type,
		Name:           input.Name,
		Settings:       input.Settings,
		IsActive:       true,
	}

	if input.Credentials != nil {
		encrypted, err := s.encryption.EncryptJSON(input.Credentials)
		if err != nil {
			return nil, NewDatabaseError(err)
		}
		integration.Credentials = encrypted
	}

	if err := s.db.DB().WithContext(ctx).Create(&integration).Error; err != nil {
		return nil, translateDBError(err, "integration")
	}
	return &integration, nil
}

func (s *IntegrationService) Get(ctx context.Context, orgID, integrationID uint) (*models.Integration, error) {
	var integration models.Integration
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", integrationID, orgID).
		First(&integration).Error
	if err != nil {
		return nil, translateDBError(err, "integration")
	}
	return &integration, nil
}

func (s *IntegrationService) GetByType(ctx context.Context, orgID uint, integrationType models.IntegrationType) (*models.Integration, error) {
	var integration models.Integration
	err := s.db.DB().WithContext(ctx).
		Where("organization_id = ? AND type = ? AND is_active = ?", orgID, integrationType, true).
		First(&integration).Error
	if err != nil {
		return nil, translateDBError(err, "integration")
	}
	return &integration, nil
}

func (s *IntegrationService) List(ctx context.Context, orgID uint, limit, offset int) ([]models.Integration, int64, error) {
	var integrations []models.Integration
	var total int64

	db := s.db.DB().WithContext(ctx).Model(&models.Integration{}).Where("organization_id = ?", orgID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err, "integration")
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&integrations).Error
	if err != nil {
		return nil, 0, translateDBError(err, "integration")
	}
	return integrations, total, nil
}

func (s *IntegrationService) Update(ctx context.Context, orgID, integrationID uint, updates map[string]interface{}) (*models.Integration, error) {
	integration, err := s.Get(ctx, orgID, integrationID)
	if err != nil {
		return nil, err
	}

	// Credentials are re-encrypted when supplied; the type is fixed at
	// creation so the (organization, type) invariant holds.
	updates = filterUpdates(updates, "name", "credentials", "settings", "is_active")
	if creds, ok := updates["credentials"]; ok {
		encrypted, err := s.encryption.EncryptJSON(creds)
		if err != nil {
			return nil, NewDatabaseError(err)
		}
		updates["credentials"] = encrypted
	}
	if len(updates) == 0 {
		return integration, nil
	}

	if err := s.db.DB().WithContext(ctx).Model(integration).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, "integration")
	}
	return s.Get(ctx, orgID, integrationID)
}

func (s *IntegrationService) Delete(ctx context.Context, orgID, integrationID uint) error {
	integration, err := s.Get(ctx, orgID, integrationID)
	if err != nil {
		return err
	}

	// Agent links to the integration go with it.
	tx := s.db.DB().WithContext(ctx).Begin()
	if err := tx.Where("integration_id = ?", integrationID).Delete(&models.AgentIntegration{}).Error; err != nil {
		tx.Rollback()
		return translateDBError(err, "agent integration")
	}
	if err := tx.Delete(integration).Error; err != nil {
		tx.Rollback()
		return translateDBError(err, "integration")
	}
	if err := tx.Commit().Error; err != nil {
		return translateDBError(err, "integration")
	}
	return nil
}

// DecryptCredentials unpacks an integration's credential blob into
// target.
func (s *IntegrationService) DecryptCredentials(integration *models.Integration, target interface{}) error {
	if integration.Credentials == "" {
		return NewValidationError("integration has no credentials configured")
	}
	if err := s.encryption.DecryptJSON(integration.Credentials, target); err != nil {
		return NewValidationError("failed to decrypt integration credentials")
	}
	return nil
}

// StoreShopifyCredentials saves the token obtained from the OAuth
// install flow, creating the integration when missing.
func (s *IntegrationService) StoreShopifyCredentials(ctx context.Context, orgID uint, creds *models.ShopifyCredentials) (*models.Integration, error) {
	integration, err := s.GetByType(ctx, orgID, models.IntegrationTypeShopify)
	if IsNotFound(err) {
		return s.Create(ctx, &CreateIntegrationInput{
			OrganizationID: orgID,
			Type:           models.IntegrationTypeShopify,
			Name:           creds.ShopDomain,
			Credentials: map[string]interface{}{
				"shop_domain":  creds.ShopDomain,
				"access_token": creds.AccessToken,
			},
		})
	}
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryption.EncryptJSON(creds)
	if err != nil {
		return nil, NewDatabaseError(err)
	}

	updates := map[string]interface{}{
		"credentials": encrypted,
		"name":        creds.ShopDomain,
		"is_active":   true,
	}
	if err := s.db.DB().WithContext(ctx).Model(integration).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, "integration")
	}
	return s.Get(ctx, orgID, integration.ID)
}
