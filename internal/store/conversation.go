package store

import (
	"context"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

func (s *Store) CreateConversation(ctx context.Context, userID uint, sessionID string) (*models.Conversation, error) {
	conv := models.Conversation{UserID: userID, SessionID: sessionID}
	if err := s.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return &conv, nil
}

func (s *Store) AddMessage(ctx context.Context, convID uint, sender, content string) (*models.Message, error) {
	if sender != models.SenderUser && sender != models.SenderBot {
		return nil, apperr.Validation("invalid message sender")
	}
	msg := models.Message{ConversationID: convID, Sender: sender, Content: content}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return &msg, nil
}

func (s *Store) GetMessages(ctx context.Context, convID uint) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.DB.WithContext(ctx).Where("conversation_id = ?", convID).
		Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return msgs, nil
}
