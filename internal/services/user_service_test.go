package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

func TestUserServiceCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	org := seedOrganization(t, db, "acme")

	ctx := context.Background()

	t.Run("hashes the password", func(t *testing.T) {
		user, err := svc.Create(ctx, &CreateUserInput{
			OrganizationID: org.ID,
			Email:          "jordan@acme.test",
			Password:       "Sufficient1",
			FirstName:      "Jordan",
			LastName:       "Lee",
			Role:           models.RoleAdmin,
		})
		require.NoError(t, err)
		assert.NotEqual(t, "Sufficient1", user.PasswordHash)
		assert.True(t, user.IsActive)
		assert.Equal(t, "Jordan Lee", user.FullName())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateUserInput{
			OrganizationID: org.ID,
			Email:          "not-an-email",
			Password:       "Sufficient1",
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateUserInput{
			OrganizationID: org.ID,
			Email:          "weak@acme.test",
			Password:       "short",
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateUserInput{
			OrganizationID: org.ID,
			Email:          "jordan@acme.test",
			Password:       "Sufficient1",
		})
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})
}

func TestUserServiceAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	org := seedOrganization(t, db, "acme")

	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateUserInput{
		OrganizationID: org.ID,
		Email:          "jordan@acme.test",
		Password:       "Sufficient1",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "jordan@acme.test", "Sufficient1")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "jordan@acme.test", "WrongPass1")
		assert.Error(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost@acme.test", "Sufficient1")
		assert.Error(t, err)
	})

	t.Run("deactivated user is rejected", func(t *testing.T) {
		user, err := svc.GetByEmail(ctx, "jordan@acme.test")
		require.NoError(t, err)
		require.NoError(t, svc.Deactivate(ctx, org.ID, user.ID))

		_, err = svc.Authenticate(ctx, "jordan@acme.test", "Sufficient1")
		assert.Error(t, err)

		// The record survives; deactivation is a soft disable.
		again, err := svc.Get(ctx, org.ID, user.ID)
		require.NoError(t, err)
		assert.False(t, again.IsActive)
	})
}

func TestUserServiceSyncExternal(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	org := seedOrganization(t, db, "acme")

	ctx := context.Background()

	t.Run("creates on first sync", func(t *testing.T) {
		user, err := svc.SyncExternal(ctx, org.ID, "ext-123", "sam@acme.test", "Sam", "Rivera")
		require.NoError(t, err)
		require.NotNil(t, user.ExternalID)
		assert.Equal(t, "ext-123", *user.ExternalID)
	})

	t.Run("matches existing subject on later syncs", func(t *testing.T) {
		first, err := svc.SyncExternal(ctx, org.ID, "ext-123", "sam@acme.test", "Sam", "Rivera")
		require.NoError(t, err)

		second, err := svc.SyncExternal(ctx, org.ID, "ext-123", "sam@acme.test", "Sam", "Rivera")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("links by email when subject is new", func(t *testing.T) {
		created, err := svc.Create(ctx, &CreateUserInput{
			OrganizationID: org.ID,
			Email:          "alex@acme.test",
			Password:       "Sufficient1",
		})
		require.NoError(t, err)

		synced, err := svc.SyncExternal(ctx, org.ID, "ext-456", "alex@acme.test", "Alex", "Kim")
		require.NoError(t, err)
		assert.Equal(t, created.ID, synced.ID)
		require.NotNil(t, synced.ExternalID)
		assert.Equal(t, "ext-456", *synced.ExternalID)
	})

	t.Run("rejects missing subject", func(t *testing.T) {
		_, err := svc.SyncExternal(ctx, org.ID, "", "nobody@acme.test", "", "")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("provider email casing does not rewrite the stored address", func(t *testing.T) {
		first, err := svc.SyncExternal(ctx, org.ID, "ext-789", "casey@acme.test", "Casey", "Park")
		require.NoError(t, err)

		second, err := svc.SyncExternal(ctx, org.ID, "ext-789", "Casey@ACME.Test", "Casey", "Park")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		stored, err := svc.Get(ctx, org.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "casey@acme.test", stored.Email)
	})

	t.Run("deactivated user cannot sign in through sync", func(t *testing.T) {
		user, err := svc.SyncExternal(ctx, org.ID, "ext-999", "drew@acme.test", "Drew", "Chen")
		require.NoError(t, err)
		require.NoError(t, svc.Deactivate(ctx, org.ID, user.ID))

		_, err = svc.SyncExternal(ctx, org.ID, "ext-999", "drew@acme.test", "Drew", "Chen")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestUserServiceUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	org := seedOrganization(t, db, "acme")
	rival := seedOrganization(t, db, "rival")

	ctx := context.Background()

	user, err := svc.Create(ctx, &CreateUserInput{
		OrganizationID: org.ID,
		Email:          "jordan@acme.test",
		Password:       "Sufficient1",
		FirstName:      "Jordan",
		LastName:       "Lee",
	})
	require.NoError(t, err)

	t.Run("updates editable fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, org.ID, user.ID, map[string]interface{}{
			"first_name": "Jo",
			"role":       models.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, "Jo", updated.FirstName)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("stores a new email in canonical form", func(t *testing.T) {
		updated, err := svc.Update(ctx, org.ID, user.ID, map[string]interface{}{
			"email": "Jordan.Lee@ACME.Test",
		})
		require.NoError(t, err)
		assert.Equal(t, "jordan.lee@acme.test", updated.Email)
	})

	t.Run("protected columns never reach the database", func(t *testing.T) {
		before, err := svc.Get(ctx, org.ID, user.ID)
		require.NoError(t, err)

		updated, err := svc.Update(ctx, org.ID, user.ID, map[string]interface{}{
			"organization_id": rival.ID,
			"password_hash":   "overwritten",
			"uuid":            "forged-uuid",
			"external_id":     "forged-subject",
		})
		require.NoError(t, err)
		assert.Equal(t, org.ID, updated.OrganizationID)
		assert.Equal(t, before.PasswordHash, updated.PasswordHash)
		assert.Equal(t, before.UUID, updated.UUID)
		assert.Nil(t, updated.ExternalID)

		// The user stays under its own tenant.
		_, err = svc.Get(ctx, rival.ID, user.ID)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}
