package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

func TestAgentServiceCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAgentService(db)
	org := seedOrganization(t, db, "acme")

	t.Run("assigns uuid and defaults", func(t *testing.T) {
		agent := models.Agent{
			OrganizationID: org.ID,
			Name:           "Order Helper",
			Temperature:    0.5,
			IsActive:       true,
		}
		require.NoError(t, svc.Create(context.Background(), &agent))
		assert.NotEmpty(t, agent.UUID)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		agent := models.Agent{OrganizationID: org.ID}
		err := svc.Create(context.Background(), &agent)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("rejects temperature out of range", func(t *testing.T) {
		agent := models.Agent{
			OrganizationID: org.ID,
			Name:           "Too Hot",
			Temperature:    3.5,
		}
		err := svc.Create(context.Background(), &agent)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestAgentServiceGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewAgentService(db)
	org := seedOrganization(t, db, "acme")
	other := seedOrganization(t, db, "rival")
	agent := seedAgent(t, db, org.ID)

	t.Run("found in own org", func(t *testing.T) {
		got, err := svc.Get(context.Background(), org.ID, agent.ID)
		require.NoError(t, err)
		assert.Equal(t, agent.Name, got.Name)
	})

	t.Run("not found across orgs", func(t *testing.T) {
		_, err := svc.Get(context.Background(), other.ID, agent.ID)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		_, err := svc.Get(context.Background(), org.ID, 9999)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestAgentServiceAttachIntegration(t *testing.T) {
	db := newTestDB(t)
	svc := NewAgentService(db)
	org := seedOrganization(t, db, "acme")
	agent := seedAgent(t, db, org.ID)
	integration := seedIntegration(t, db, org.ID, models.IntegrationTypeShopify)

	t.Run("attaches with selected tools", func(t *testing.T) {
		link, err := svc.AttachIntegration(context.Background(), org.ID, agent.ID, integration.ID, []string{"search_products"})
		require.NoError(t, err)
		assert.True(t, link.AllowsTool("search_products"))
		assert.False(t, link.AllowsTool("get_order_status"))
	})

	t.Run("duplicate link conflicts", func(t *testing.T) {
		_, err := svc.AttachIntegration(context.Background(), org.ID, agent.ID, integration.ID, nil)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})

	t.Run("rejects unknown tool names", func(t *testing.T) {
		agent2 := seedAgent(t, db, org.ID)
		_, err := svc.AttachIntegration(context.Background(), org.ID, agent2.ID, integration.ID, []string{"drop_tables"})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("rejects integration from another org", func(t *testing.T) {
		other := seedOrganization(t, db, "rival")
		foreign := seedIntegration(t, db, other.ID, models.IntegrationTypeShopify)
		_, err := svc.AttachIntegration(context.Background(), org.ID, agent.ID, foreign.ID, nil)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestAgentServiceUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAgentService(db)
	org := seedOrganization(t, db, "acme")
	rival := seedOrganization(t, db, "rival")
	agent := seedAgent(t, db, org.ID)

	ctx := context.Background()

	t.Run("updates editable fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, org.ID, agent.ID, map[string]interface{}{
			"name":        "Renamed Agent",
			"temperature": 0.2,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Agent", updated.Name)
		assert.InDelta(t, 0.2, updated.Temperature, 0.001)
	})

	t.Run("rejects out-of-range temperature", func(t *testing.T) {
		_, err := svc.Update(ctx, org.ID, agent.ID, map[string]interface{}{"temperature": 3.5})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("protected columns never reach the database", func(t *testing.T) {
		updated, err := svc.Update(ctx, org.ID, agent.ID, map[string]interface{}{
			"organization_id": rival.ID,
			"uuid":            "forged-uuid",
		})
		require.NoError(t, err)
		assert.Equal(t, org.ID, updated.OrganizationID)
		assert.NotEqual(t, "forged-uuid", updated.UUID)

		_, err = svc.Get(ctx, rival.ID, agent.ID)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestAgentServiceUpdateIntegration(t *testing.T) {
	db := newTestDB(t)
	svc := NewAgentService(db)
	org := seedOrganization(t, db, "acme")
	agent := seedAgent(t, db, org.ID)
	integration := seedIntegration(t, db, org.ID, models.IntegrationTypeShopify)

	ctx := context.Background()

	_, err := svc.AttachIntegration(ctx, org.ID, agent.ID, integration.ID, []string{"search_products"})
	require.NoError(t, err)

	t.Run("selection decoded from a request body survives a reload", func(t *testing.T) {
		var req struct {
			SelectedTools []string `json:"selected_tools"`
		}
		body := `{"selected_tools": ["get_product", "get_order_status"]}`
		require.NoError(t, json.Unmarshal([]byte(body), &req))

		link, err := svc.UpdateIntegration(ctx, org.ID, agent.ID, integration.ID, req.SelectedTools, nil)
		require.NoError(t, err)
		assert.True(t, link.AllowsTool("get_product"))
		assert.False(t, link.AllowsTool("search_products"))

		enabled, err := svc.EnabledIntegrations(ctx, agent.ID)
		require.NoError(t, err)
		require.Len(t, enabled, 1)
		assert.Equal(t, []string{"get_product", "get_order_status"}, []string(enabled[0].SelectedTools))
	})

	t.Run("rejects unknown tools", func(t *testing.T) {
		_, err := svc.UpdateIntegration(ctx, org.ID, agent.ID, integration.ID, []string{"drop_tables"}, nil)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("nil selection leaves tools untouched", func(t *testing.T) {
		disabled := false
		link, err := svc.UpdateIntegration(ctx, org.ID, agent.ID, integration.ID, nil, &disabled)
		require.NoError(t, err)
		assert.False(t, link.IsEnabled)
		assert.True(t, len(link.SelectedTools) == 2)

		enabled, err := svc.EnabledIntegrations(ctx, agent.ID)
		require.NoError(t, err)
		assert.Empty(t, enabled)
	})

	t.Run("unknown link", func(t *testing.T) {
		_, err := svc.UpdateIntegration(ctx, org.ID, agent.ID, 9999, nil, nil)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestAgentIntegrationAllowsTool(t *testing.T) {
	link := models.AgentIntegration{IsEnabled: true}

	// Empty selection exposes everything.
	assert.True(t, link.AllowsTool("search_products"))

	link.SelectedTools = []string{"get_product"}
	assert.True(t, link.AllowsTool("get_product"))
	assert.False(t, link.AllowsTool("search_products"))

	link.IsEnabled = false
	assert.False(t, link.AllowsTool("get_product"))
}
