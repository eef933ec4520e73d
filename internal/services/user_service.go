package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

type UserService struct {
	db database.Database
}

func NewUserService(db database.Database) *UserService {
	return &UserService{db: db}
}

// normalizeEmail folds addresses to one canonical form so lookups and
// comparisons never depend on how the caller cased the input.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type CreateUserInput struct {
	OrganizationID uint
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Role           string
	ExternalID     *string
}

func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if !utils.ValidateEmail(input.Email) {
		return nil, NewValidationError("invalid email address")
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	user := models.User{
		OrganizationID: input.OrganizationID,
		Email:          normalizeEmail(input.Email),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Role:           input.Role,
		IsActive:       true,
		ExternalID:     input.ExternalID,
	}

	if input.Password != "" {
		if err := utils.ValidatePassword(input.Password); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, NewDatabaseError(err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.db.DB().WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translateDBError(err, "user")
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, orgID, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", userID, orgID).
		First(&user).Error
	if err != nil {
		return nil, translateDBError(err, "user")
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.DB().WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, translateDBError(err, "user")
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, orgID uint, limit, offset int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	db := s.db.DB().WithContext(ctx).Model(&models.User{}).Where("organization_id = ?", orgID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err, "user")
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, translateDBError(err, "user")
	}
	return users, total, nil
}

func (s *UserService) Update(ctx context.Context, orgID, userID uint, updates map[string]interface{}) (*models.User, error) {
	updates = filterUpdates(updates, "email", "first_name", "last_name", "role", "is_active", "settings")
	if email, ok := updates["email"].(string); ok {
		if !utils.ValidateEmail(email) {
			return nil, NewValidationError("invalid email address")
		}
		updates["email"] = normalizeEmail(email)
	}

	user, err := s.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.DB().WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, "user")
	}
	return s.Get(ctx, orgID, userID)
}

// Deactivate soft-disables a user rather than deleting the record, so
// conversation and audit history keeps its author.
func (s *UserService) Deactivate(ctx context.Context, orgID, userID uint) error {
	user, err := s.Get(ctx, orgID, userID)
	if err != nil {
		return err
	}

	err = s.db.DB().WithContext(ctx).Model(user).Update("is_active", false).Error
	if err != nil {
		return translateDBError(err, "user")
	}
	return nil
}

// Authenticate verifies the bcrypt password credential for local
// logins. Inactive users are rejected regardless of password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, NewValidationError("invalid email or password")
	}
	if !user.IsActive {
		return nil, NewValidationError("account is disabled")
	}
	if user.PasswordHash == "" {
		return nil, NewValidationError("password login not enabled for this account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewValidationError("invalid email or password")
	}

	now := time.Now()
	s.db.DB().WithContext(ctx).Model(user).Update("last_login_at", &now)
	user.LastLoginAt = &now

	return user, nil
}

// SyncExternal upserts a user from a verified identity-provider token.
// Matches on external subject first, then email; creates when neither
// exists.
func (s *UserService) SyncExternal(ctx context.Context, orgID uint, externalID, email, firstName, lastName string) (*models.User, error) {
	if externalID == "" {
		return nil, NewValidationError("external id is required")
	}
	if !utils.ValidateEmail(email) {
		return nil, NewValidationError("invalid email address")
	}

	email = normalizeEmail(email)

	var user models.User
	err := s.db.DB().WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&user).Error
	if err == nil {
		if !user.IsActive {
			return nil, NewValidationError("account is disabled")
		}
		updates := map[string]interface{}{"last_login_at": time.Now()}
		if normalizeEmail(user.Email) != email {
			updates["email"] = email
		}
		if err := s.db.DB().WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, translateDBError(err, "user")
		}
		return &user, nil
	}

	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsActive {
			return nil, NewValidationError("account is disabled")
		}
		if err := s.db.DB().WithContext(ctx).Model(existing).Update("external_id", externalID).Error; err != nil {
			return nil, translateDBError(err, "user")
		}
		existing.ExternalID = &externalID
		return existing, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	return s.Create(ctx, &CreateUserInput{
		OrganizationID: orgID,
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           models.RoleUser,
		ExternalID:     &externalID,
	})
}
