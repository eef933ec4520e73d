package services

import (
	"context"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

type fakeChatClient struct {
	requests  []openai.ChatCompletionRequest
	responses []openai.ChatCompletionResponse
	err       error
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if len(f.responses) == 0 {
		return textResponse("I can help with that.", 10), nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func textResponse(content string, tokens int) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openai.Usage{TotalTokens: tokens},
	}
}

type chatFixture struct {
	db            database.Database
	svc           *ChatService
	client        *fakeChatClient
	moderation    *fakeModerationClient
	agents        *AgentService
	integrations  *IntegrationService
	conversations *ConversationService
	org           *models.Organization
	agent         *models.Agent
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	db := newTestDB(t)
	encryption := NewEncryptionService("0123456789abcdef0123456789abcdef")
	agents := NewAgentService(db)
	integrations := NewIntegrationService(db, encryption)
	conversations := NewConversationService(db)
	moderation := &fakeModerationClient{}
	client := &fakeChatClient{}

	cfg := &config.Config{
		OpenAI: config.OpenAIConfig{Model: "gpt-4o-mini", MaxTokens: 500},
	}

	svc := NewChatService(
		client,
		cfg,
		agents,
		integrations,
		conversations,
		newTestGuardrail(moderation, time.Minute),
		NewShopifyClient(cfg.Shopify),
	)

	org := seedOrganization(t, db, "acme")
	agent := seedAgent(t, db, org.ID)

	return &chatFixture{
		db:            db,
		svc:           svc,
		client:        client,
		moderation:    moderation,
		agents:        agents,
		integrations:  integrations,
		conversations: conversations,
		org:           org,
		agent:         agent,
	}
}

func TestChatServiceSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("clean message gets a completion", func(t *testing.T) {
		fx := newChatFixture(t)
		fx.client.responses = []openai.ChatCompletionResponse{
			textResponse("Your order shipped yesterday.", 37),
		}

		reply, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "where is my order?")
		require.NoError(t, err)
		assert.Equal(t, "Your order shipped yesterday.", reply.Content)
		assert.False(t, reply.Flagged)
		assert.Equal(t, 37, reply.TokensUsed)
		assert.NotEmpty(t, reply.ConversationUUID)

		// The transcript holds the visitor message and the answer.
		convs, _, err := fx.conversations.List(ctx, fx.org.ID, fx.agent.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		messages, err := fx.conversations.Messages(ctx, fx.org.ID, convs[0].ID, 10)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "user", messages[0].Role)
		assert.Equal(t, "assistant", messages[1].Role)
	})

	t.Run("system prompt carries the agent instructions", func(t *testing.T) {
		fx := newChatFixture(t)

		_, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "hi")
		require.NoError(t, err)

		require.Len(t, fx.client.requests, 1)
		req := fx.client.requests[0]
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "Be helpful.", req.Messages[0].Content)
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Empty(t, req.Tools)
	})

	t.Run("flagged input is refused without calling the model", func(t *testing.T) {
		fx := newChatFixture(t)
		fx.moderation.flagged = true

		reply, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "something nasty")
		require.NoError(t, err)
		assert.True(t, reply.Flagged)
		assert.Equal(t, "I'm sorry, but I can't help with that request.", reply.Content)
		assert.Empty(t, fx.client.requests)

		// Both the flagged message and the refusal are persisted.
		convs, _, err := fx.conversations.List(ctx, fx.org.ID, fx.agent.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		messages, err := fx.conversations.Messages(ctx, fx.org.ID, convs[0].ID, 10)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "something nasty", messages[0].Content)
		assert.Equal(t, reply.Content, messages[1].Content)
	})

	t.Run("session history is replayed on later turns", func(t *testing.T) {
		fx := newChatFixture(t)

		_, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "first question")
		require.NoError(t, err)
		_, err = fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "second question")
		require.NoError(t, err)

		require.Len(t, fx.client.requests, 2)
		// system + first turn (user, assistant) + second user message.
		second := fx.client.requests[1]
		require.Len(t, second.Messages, 4)
		assert.Equal(t, "first question", second.Messages[1].Content)
		assert.Equal(t, "second question", second.Messages[3].Content)
	})

	t.Run("inactive agent is rejected", func(t *testing.T) {
		fx := newChatFixture(t)
		require.NoError(t, fx.db.DB().Model(fx.agent).Update("is_active", false).Error)

		_, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "hello")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		fx := newChatFixture(t)

		_, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown agent", func(t *testing.T) {
		fx := newChatFixture(t)

		_, err := fx.svc.SendMessage(ctx, "00000000-0000-0000-0000-000000000000", "sess-1", "shop.example.com", "hello")
		assert.True(t, IsNotFound(err))
	})
}

func TestChatServiceToolResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("only selected tools reach the model", func(t *testing.T) {
		fx := newChatFixture(t)

		integration, err := fx.integrations.Create(ctx, &CreateIntegrationInput{
			OrganizationID: fx.org.ID,
			Type:           models.IntegrationTypeShopify,
			Name:           "Main store",
			Credentials:    map[string]interface{}{"shop_domain": "acme.myshopify.com", "access_token": "shpat_test"},
		})
		require.NoError(t, err)
		_, err = fx.agents.AttachIntegration(ctx, fx.org.ID, fx.agent.ID, integration.ID, []string{"search_products"})
		require.NoError(t, err)

		_, err = fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "do you have mugs?")
		require.NoError(t, err)

		require.Len(t, fx.client.requests, 1)
		req := fx.client.requests[0]
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "search_products", req.Tools[0].Function.Name)
	})

	t.Run("deactivated integration contributes no tools", func(t *testing.T) {
		fx := newChatFixture(t)

		integration, err := fx.integrations.Create(ctx, &CreateIntegrationInput{
			OrganizationID: fx.org.ID,
			Type:           models.IntegrationTypeShopify,
			Name:           "Main store",
			Credentials:    map[string]interface{}{"shop_domain": "acme.myshopify.com", "access_token": "shpat_test"},
		})
		require.NoError(t, err)
		_, err = fx.agents.AttachIntegration(ctx, fx.org.ID, fx.agent.ID, integration.ID, nil)
		require.NoError(t, err)
		require.NoError(t, fx.db.DB().Model(integration).Update("is_active", false).Error)

		_, err = fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "do you have mugs?")
		require.NoError(t, err)

		require.Len(t, fx.client.requests, 1)
		assert.Empty(t, fx.client.requests[0].Tools)
	})
}

func TestChatServiceToolCallLoop(t *testing.T) {
	ctx := context.Background()
	fx := newChatFixture(t)

	// First round asks for a tool that is not wired to the agent; the
	// error is fed back and the second round answers.
	fx.client.responses = []openai.ChatCompletionResponse{
		{
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role: openai.ChatMessageRoleAssistant,
						ToolCalls: []openai.ToolCall{
							{
								ID:   "call-1",
								Type: openai.ToolTypeFunction,
								Function: openai.FunctionCall{
									Name:      "track_shipment",
									Arguments: `{"order_name":"#1001"}`,
								},
							},
						},
					},
				},
			},
			Usage: openai.Usage{TotalTokens: 20},
		},
		textResponse("I couldn't look that up, sorry.", 15),
	}

	reply, err := fx.svc.SendMessage(ctx, fx.agent.UUID, "sess-1", "shop.example.com", "track my order")
	require.NoError(t, err)
	assert.Equal(t, "I couldn't look that up, sorry.", reply.Content)
	assert.Equal(t, 35, reply.TokensUsed)

	require.Len(t, fx.client.requests, 2)
	second := fx.client.requests[1]
	last := second.Messages[len(second.Messages)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Contains(t, last.Content, "not available")
}
