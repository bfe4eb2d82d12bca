package services

import (
	"time"

	"wingman_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const conversationTitleLimit = 50

// DefaultConversationService implements ConversationServiceDB on GORM.
type DefaultConversationService struct {
	db *gorm.DB
}

func NewConversationServiceDB(db *gorm.DB) ConversationServiceDB {
	return &DefaultConversationService{db: db}
}

// conversationTitle derives a title from the first message of a conversation.
func conversationTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= conversationTitleLimit {
		return firstMessage
	}
	return string(runes[:conversationTitleLimit]) + "..."
}

// GetConversationForUser retrieves a conversation and its ordered messages,
// scoped to the owning user.
func (s *DefaultConversationService) GetConversationForUser(conversationID string, userID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	result := s.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		First(&conversation)
	if result.Error != nil {
		return nil, result.Error
	}
	return &conversation, nil
}

// CreateConversation lazily creates a conversation titled after its first
// message.
func (s *DefaultConversationService) CreateConversation(userID uuid.UUID, firstMessage string) (*models.Conversation, error) {
	conversation := &models.Conversation{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  conversationTitle(firstMessage),
	}
	if err := s.db.Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

// AppendTurn persists both sides of one turn and bumps the conversation
// timestamp in a single transaction, so a mid-sequence failure never leaves
// an orphaned user turn.
func (s *DefaultConversationService) AppendTurn(conversationID, userMessage, assistantMessage string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		userTurn := &models.ChatMessage{
			ConversationID: conversationID,
			Role:           "user",
			Content:        userMessage,
		}
		if err := tx.Create(userTurn).Error; err != nil {
			return err
		}

		assistantTurn := &models.ChatMessage{
			ConversationID: conversationID,
			Role:           "assistant",
			Content:        assistantMessage,
		}
		if err := tx.Create(assistantTurn).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
}

// GetConversationsByUserID retrieves all conversations for a given user,
// most recently updated first.
func (s *DefaultConversationService) GetConversationsByUserID(userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	result := s.db.
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&conversations)
	if result.Error != nil {
		log.Error().Err(result.Error).Str("userID", userID.String()).Msg("Failed to retrieve conversations")
		return nil, result.Error
	}
	return conversations, nil
}

// DeleteConversation deletes a conversation and its messages, scoped to the
// owning user.
func (s *DefaultConversationService) DeleteConversation(conversationID string, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.Where("id = ? AND user_id = ?", conversationID, userID).First(&conversation).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conversation).Error
	})
}
