package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

// ChatCompletionClient is the slice of the OpenAI client the chat
// service needs; tests substitute a fake.
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatService orchestrates a widget chat turn: guardrail the input,
// resolve the agent's tool set, call the model (executing tool calls
// against the integration APIs), guardrail the output, persist the
// transcript.
type ChatService struct {
	client        ChatCompletionClient
	cfg           *config.Config
	agents        *AgentService
	integrations  *IntegrationService
	conversations *ConversationService
	guardrails    *GuardrailService
	shopify       *ShopifyClient
}

func NewChatService(
	client ChatCompletionClient,
	cfg *config.Config,
	agents *AgentService,
	integrations *IntegrationService,
	conversations *ConversationService,
	guardrails *GuardrailService,
	shopify *ShopifyClient,
) *ChatService {
	return &ChatService{
		client:        client,
		cfg:           cfg,
		agents:        agents,
		integrations:  integrations,
		conversations: conversations,
		guardrails:    guardrails,
		shopify:       shopify,
	}
}

// ChatReply is the assistant's answer for one widget message.
type ChatReply struct {
	ConversationUUID string    `json:"conversation_uuid"`
	Content          string    `json:"content"`
	Flagged          bool      `json:"flagged"`
	TokensUsed       int       `json:"tokens_used"`
	CreatedAt        time.Time `json:"created_at"`
}

const historyWindow = 20

// blockedReply is returned verbatim when a guardrail flags content.
const blockedReply = "I'm sorry, but I can't help with that request."

// SendMessage processes one visitor message for a widget session.
func (s *ChatService) SendMessage(ctx context.Context, agentUUID, sessionID, domain, message string) (*ChatReply, error) {
	if message == "" {
		return nil, NewValidationError("message is required")
	}

	agent, err := s.agents.GetByUUID(ctx, agentUUID)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive {
		return nil, NewValidationError("agent is not active")
	}

	conv, err := s.conversations.GetOrCreate(ctx, agent.OrganizationID, agent.ID, sessionID, domain)
	if err != nil {
		return nil, err
	}

	// Input guardrail. Flagged input is stored, answered with the
	// canned refusal and never reaches the model.
	verdict, err := s.guardrails.CheckContent(ctx, message)
	if err != nil {
		utils.GetLogger().Warn("input guardrail check failed", utils.LogFields{"error": err.Error()})
		verdict = &GuardrailResult{Flagged: false}
	}

	if _, err := s.conversations.AppendMessage(ctx, conv.ID, "user", message, nil, nil); err != nil {
		return nil, err
	}

	if verdict.Flagged {
		return s.refuse(ctx, conv, verdict)
	}

	history, err := s.conversations.Messages(ctx, agent.OrganizationID, conv.ID, historyWindow)
	if err != nil {
		return nil, err
	}

	tools, toolLinks, err := s.resolveTools(ctx, agent)
	if err != nil {
		return nil, err
	}

	reply, tokensUsed, err := s.complete(ctx, agent, history, tools, toolLinks)
	if err != nil {
		return nil, err
	}

	// Output guardrail.
	outVerdict, err := s.guardrails.CheckContent(ctx, reply)
	if err == nil && outVerdict.Flagged {
		return s.refuse(ctx, conv, outVerdict)
	}

	meta := models.JSON{"model": agent.Model}
	if _, err := s.conversations.AppendMessage(ctx, conv.ID, "assistant", reply, &tokensUsed, meta); err != nil {
		return nil, err
	}

	return &ChatReply{
		ConversationUUID: conv.UUID,
		Content:          reply,
		TokensUsed:       tokensUsed,
		CreatedAt:        time.Now(),
	}, nil
}

func (s *ChatService) refuse(ctx context.Context, conv *models.Conversation, verdict *GuardrailResult) (*ChatReply, error) {
	meta := models.JSON{"guardrail_flagged": true}
	if len(verdict.Categories) > 0 {
		meta["categories"] = verdict.Categories
	}
	if _, err := s.conversations.AppendMessage(ctx, conv.ID, "assistant", blockedReply, nil, meta); err != nil {
		return nil, err
	}

	return &ChatReply{
		ConversationUUID: conv.UUID,
		Content:          blockedReply,
		Flagged:          true,
		CreatedAt:        time.Now(),
	}, nil
}

// resolveTools intersects each enabled integration's tool set with the
// link's selected tools and builds the model-facing definitions.
func (s *ChatService) resolveTools(ctx context.Context, agent *models.Agent) ([]openai.Tool, map[string]*models.AgentIntegration, error) {
	links, err := s.agents.EnabledIntegrations(ctx, agent.ID)
	if err != nil {
		return nil, nil, err
	}

	var tools []openai.Tool
	byName := make(map[string]*models.AgentIntegration)

	for i := range links {
		link := &links[i]
		if !link.Integration.IsActive {
			continue
		}
		for _, name := range link.Integration.AvailableTools() {
			if !link.AllowsTool(name) {
				continue
			}
			def, ok := toolDefinitions[name]
			if !ok {
				continue
			}
			tools = append(tools, def)
			byName[name] = link
		}
	}

	return tools, byName, nil
}

// complete runs the completion loop, executing at most three rounds of
// tool calls before giving the model the last word.
func (s *ChatService) complete(ctx context.Context, agent *models.Agent, history []models.Message, tools []openai.Tool, toolLinks map[string]*models.AgentIntegration) (string, int, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: s.systemPrompt(agent),
		},
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	model := agent.Model
	if model == "" {
		model = s.cfg.OpenAI.Model
	}
	maxTokens := agent.MaxTokens
	if maxTokens == 0 {
		maxTokens = s.cfg.OpenAI.MaxTokens
	}

	totalTokens := 0
	for round := 0; round < 3; round++ {
		req := openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: agent.Temperature,
		}
		if len(tools) > 0 {
			req.Tools = tools
		}

		start := time.Now()
		resp, err := s.client.CreateChatCompletion(ctx, req)
		utils.LogAICall(model, resp.Usage.TotalTokens, time.Since(start), err)
		if err != nil {
			return "", 0, fmt.Errorf("failed to create chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", 0, fmt.Errorf("no response choices received")
		}

		totalTokens += resp.Usage.TotalTokens
		choice := resp.Choices[0].Message

		if len(choice.ToolCalls) == 0 {
			return choice.Content, totalTokens, nil
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			result := s.executeTool(ctx, call, toolLinks)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", totalTokens, fmt.Errorf("tool call limit exceeded")
}

func (s *ChatService) systemPrompt(agent *models.Agent) string {
	prompt := agent.Instructions
	if prompt == "" {
		prompt = "You are a helpful customer service assistant."
	}
	return prompt
}

// executeTool dispatches one model tool call against the owning
// integration. Errors are reported back to the model as text so the
// conversation can continue.
func (s *ChatService) executeTool(ctx context.Context, call openai.ToolCall, toolLinks map[string]*models.AgentIntegration) string {
	link, ok := toolLinks[call.Function.Name]
	if !ok {
		return fmt.Sprintf("error: tool %q is not available", call.Function.Name)
	}

	var args struct {
		Query     string `json:"query"`
		ProductID int64  `json:"product_id"`
		OrderName string `json:"order_name"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf("error: invalid tool arguments: %v", err)
	}

	var creds models.ShopifyCredentials
	if err := s.integrations.DecryptCredentials(&link.Integration, &creds); err != nil {
		return "error: integration credentials unavailable"
	}

	var result interface{}
	var err error
	switch call.Function.Name {
	case "search_products":
		result, err = s.shopify.SearchProducts(ctx, &creds, args.Query, 10)
	case "get_product":
		result, err = s.shopify.GetProduct(ctx, &creds, args.ProductID)
	case "get_order_status":
		result, err = s.shopify.GetOrderStatus(ctx, &creds, args.OrderName)
	default:
		return fmt.Sprintf("error: unknown tool %q", call.Function.Name)
	}
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(out)
}

var toolDefinitions = map[string]openai.Tool{
	"search_products": {
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "search_products",
			Description: "Search the store's products by title.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Product title to search for"}
				},
				"required": ["query"]
			}`),
		},
	},
	"get_product": {
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "get_product",
			Description: "Fetch a single product by its numeric ID.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"product_id": {"type": "integer", "description": "Shopify product ID"}
				},
				"required": ["product_id"]
			}`),
		},
	},
	"get_order_status": {
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "get_order_status",
			Description: "Look up an order's payment and fulfillment status by its order name, e.g. #1001.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"order_name": {"type": "string", "description": "Customer-facing order name"}
				},
				"required": ["order_name"]
			}`),
		},
	},
}
