package services

import (
	"context"
	"strings"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type OrganizationService struct {
	db database.Database
}

func NewOrganizationService(db database.Database) *OrganizationService {
	return &OrganizationService{db: db}
}

func (s *OrganizationService) Create(ctx context.Context, org *models.Organization) error {
	if strings.TrimSpace(org.Name) == "" {
		return NewValidationError("organization name is required")
	}
	if err := utils.ValidateSlug(org.Slug); err != nil {
		return NewValidationError("%s", err.Error())
	}

	if err := s.db.DB().WithContext(ctx).Create(org).Error; err != nil {
		return translateDBError(err, "organization")
	}
	return nil
}

func (s *OrganizationService) Get(ctx context.Context, orgID uint) (*models.Organization, error) {
	var org models.Organization
	err := s.db.DB().WithContext(ctx).Where("id = ?", orgID).First(&org).Error
	if err != nil {
		return nil, translateDBError(err, "organization")
	}
	return &org, nil
}

func (s *OrganizationService) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.DB().WithContext(ctx).Where("slug = ?", slug).First(&org).Error
	if err != nil {
		return nil, translateDBError(err, "organization")
	}
	return &org, nil
}

func (s *OrganizationService) List(ctx context.Context, limit, offset int) ([]models.Organization, int64, error) {
	var orgs []models.Organization
	var total int64

	db := s.db.DB().WithContext(ctx).Model(&models.Organization{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err, "organization")
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orgs).Error
	if err != nil {
		return nil, 0, translateDBError(err, "organization")
	}
	return orgs, total, nil
}

func (s *OrganizationService) Update(ctx context.Context, orgID uint, updates map[string]interface{}) (*models.Organization, error) {
	updates = filterUpdates(updates, "name", "slug", "description", "settings")
	if name, ok := updates["name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, NewValidationError("organization name cannot be empty")
	}
	if slug, ok := updates["slug"].(string); ok {
		if err := utils.ValidateSlug(slug); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
	}

	org, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return org, nil
	}

	if err := s.db.DB().WithContext(ctx).Model(org).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, "organization")
	}
	return s.Get(ctx, orgID)
}

func (s *OrganizationService) Delete(ctx context.Context, orgID uint) error {
	if _, err := s.Get(ctx, orgID); err != nil {
		return err
	}

	err := s.db.DB().WithContext(ctx).Where("id = ?", orgID).Delete(&models.Organization{}).Error
	if err != nil {
		return translateDBError(err, "organization")
	}
	return nil
}

// UserHasAccess reports whether the user belongs to the organization.
func (s *OrganizationService) UserHasAccess(ctx context.Context, userID, orgID uint) (bool, error) {
	var count int64
	err := s.db.DB().WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND organization_id = ? AND is_active = ?", userID, orgID, true).
		Count(&count).Error
	if err != nil {
		return false, translateDBError(err, "user")
	}
	return count > 0, nil
}
