package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

func TestOrganizationServiceCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrganizationService(db)

	ctx := context.Background()

	t.Run("valid organization", func(t *testing.T) {
		org := &models.Organization{Name: "Acme Stores", Slug: "acme-stores"}
		require.NoError(t, svc.Create(ctx, org))
		assert.NotZero(t, org.ID)
	})

	t.Run("empty name", func(t *testing.T) {
		err := svc.Create(ctx, &models.Organization{Name: "  ", Slug: "blank"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("bad slug", func(t *testing.T) {
		err := svc.Create(ctx, &models.Organization{Name: "Acme", Slug: "Not A Slug"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		err := svc.Create(ctx, &models.Organization{Name: "Another Acme", Slug: "acme-stores"})
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})
}

func TestOrganizationServiceUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrganizationService(db)
	org := seedOrganization(t, db, "acme")

	ctx := context.Background()

	t.Run("renames", func(t *testing.T) {
		updated, err := svc.Update(ctx, org.ID, map[string]interface{}{"name": "Acme Worldwide"})
		require.NoError(t, err)
		assert.Equal(t, "Acme Worldwide", updated.Name)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.Update(ctx, org.ID, map[string]interface{}{"name": ""})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("rejects bad slug", func(t *testing.T) {
		_, err := svc.Update(ctx, org.ID, map[string]interface{}{"slug": "BAD SLUG"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown organization", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, map[string]interface{}{"name": "Ghost"})
		assert.True(t, IsNotFound(err))
	})

	t.Run("identity columns never reach the database", func(t *testing.T) {
		before, err := svc.Get(ctx, org.ID)
		require.NoError(t, err)

		updated, err := svc.Update(ctx, org.ID, map[string]interface{}{
			"uuid": "forged-uuid",
			"id":   9999,
		})
		require.NoError(t, err)
		assert.Equal(t, before.UUID, updated.UUID)
		assert.Equal(t, org.ID, updated.ID)
	})
}

func TestOrganizationServiceUserHasAccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrganizationService(db)
	users := NewUserService(db)
	org := seedOrganization(t, db, "acme")
	other := seedOrganization(t, db, "rival")

	ctx := context.Background()

	user, err := users.Create(ctx, &CreateUserInput{
		OrganizationID: org.ID,
		Email:          "jordan@acme.test",
		Password:       "Sufficient1",
	})
	require.NoError(t, err)

	t.Run("member of own organization", func(t *testing.T) {
		ok, err := svc.UserHasAccess(ctx, user.ID, org.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not a member of another organization", func(t *testing.T) {
		ok, err := svc.UserHasAccess(ctx, user.ID, other.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("deactivated member loses access", func(t *testing.T) {
		require.NoError(t, users.Deactivate(ctx, org.ID, user.ID))

		ok, err := svc.UserHasAccess(ctx, user.ID, org.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
