package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/models"
)

type ConversationService struct {
	db database.Database
}

func NewConversationService(db database.Database) *ConversationService {
	return &ConversationService{db: db}
}

// GetOrCreate resolves the conversation for a widget session,
// creating it on first message.
func (s *ConversationService) GetOrCreate(ctx context.Context, orgID, agentID uint, sessionID, domain string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.DB().WithContext(ctx).
		Where("agent_id = ? AND session_id = ? AND status = ?", agentID, sessionID, models.ConversationStatusActive).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if appErr := translateDBError(err, "conversation"); !IsNotFound(appErr) {
		return nil, appErr
	}

	conv = models.Conversation{
		OrganizationID: orgID,
		AgentID:        agentID,
		SessionID:      sessionID,
		VisitorDomain:  domain,
		Status:         models.ConversationStatusActive,
	}
	if err := s.db.DB().WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, translateDBError(err, "conversation")
	}
	return &conv, nil
}

func (s *ConversationService) Get(ctx context.Context, orgID, conversationID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ?", conversationID, orgID).
		First(&conv).Error
	if err != nil {
		return nil, translateDBError(err, "conversation")
	}
	return &conv, nil
}

func (s *ConversationService) List(ctx context.Context, orgID uint, agentID uint, limit, offset int) ([]models.Conversation, int64, error) {
	var convs []models.Conversation
	var total int64

	db := s.db.DB().WithContext(ctx).Model(&models.Conversation{}).Where("organization_id = ?", orgID)
	if agentID != 0 {
		db = db.Where("agent_id = ?", agentID)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateDBError(err, "conversation")
	}

	// Conversations without messages sort last; the IS NULL key is
	// portable where NULLS LAST is not.
	err := db.Order("last_message_at IS NULL, last_message_at DESC").Limit(limit).Offset(offset).Find(&convs).Error
	if err != nil {
		return nil, 0, translateDBError(err, "conversation")
	}
	return convs, total, nil
}

// Messages returns a conversation's transcript oldest-first.
func (s *ConversationService) Messages(ctx context.Context, orgID, conversationID uint, limit int) ([]models.Message, error) {
	if _, err := s.Get(ctx, orgID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var messages []models.Message
	err := s.db.DB().WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, translateDBError(err, "message")
	}
	return messages, nil
}

// AppendMessage stores a message and bumps the conversation counters
// in one transaction.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID uint, role, content string, tokenCount *int, metadata models.JSON) (*models.Message, error) {
	msg := models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TokenCount:     tokenCount,
		Metadata:       metadata,
	}

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Updates(map[string]interface{}{
				"message_count":   gorm.Expr("message_count + 1"),
				"last_message_at": &now,
			}).Error
	})
	if err != nil {
		return nil, translateDBError(err, "message")
	}
	return &msg, nil
}

func (s *ConversationService) Delete(ctx context.Context, orgID, conversationID uint) error {
	conv, err := s.Get(ctx, orgID, conversationID)
	if err != nil {
		return err
	}

	err = s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(conv).Error
	})
	if err != nil {
		return translateDBError(err, "conversation")
	}
	return nil
}
