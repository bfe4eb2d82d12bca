package services

import (
	"errors"

	"wingman_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrConversationLinked is returned when a conversation is already attached
// to another date.
var ErrConversationLinked = errors.New("conversation is already linked to a date")

// DefaultDateService implements DateServiceDB on GORM.
type DefaultDateService struct {
	db *gorm.DB
}

func NewDateServiceDB(db *gorm.DB) DateServiceDB {
	return &DefaultDateService{db: db}
}

// GetDatesByUserID retrieves the user's dates, newest first, with linked
// conversation summaries.
func (s *DefaultDateService) GetDatesByUserID(userID uuid.UUID) ([]models.DateEntry, error) {
	var dates []models.DateEntry
	result := s.db.
		Preload("Conversations").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&dates)
	if result.Error != nil {
		log.Error().Err(result.Error).Str("userID", userID.String()).Msg("Failed to retrieve dates")
		return nil, result.Error
	}
	return dates, nil
}

// CreateDate creates a date and optionally links an existing conversation.
// The conversation must belong to the same user and not be linked already.
func (s *DefaultDateService) CreateDate(userID uuid.UUID, name string, conversationID *string) (*models.DateEntry, error) {
	date := &models.DateEntry{
		UserID: userID,
		Name:   name,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conversation *models.Conversation
		if conversationID != nil {
			conversation = &models.Conversation{}
			if err := tx.Where("id = ? AND user_id = ?", *conversationID, userID).First(conversation).Error; err != nil {
				return err
			}
			if conversation.DateID != nil {
				return ErrConversationLinked
			}
		}

		if err := tx.Create(date).Error; err != nil {
			return err
		}

		if conversation != nil {
			if err := tx.Model(conversation).Update("date_id", date.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return date, nil
}

// UpdateDate applies the provided rating and/or notes to a date owned by the
// user. Nil fields are left untouched.
func (s *DefaultDateService) UpdateDate(id uint, userID uuid.UUID, rating *int, notes *string) (*models.DateEntry, error) {
	var date models.DateEntry
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&date).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if rating != nil {
		updates["rating"] = *rating
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&date).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &date, nil
}

// DeleteDate removes a date along with its linked conversations and their
// messages.
func (s *DefaultDateService) DeleteDate(id uint, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var date models.DateEntry
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&date).Error; err != nil {
			return err
		}

		var conversations []models.Conversation
		if err := tx.Where("date_id = ?", date.ID).Find(&conversations).Error; err != nil {
			return err
		}
		for _, conversation := range conversations {
			if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
		}
		if len(conversations) > 0 {
			if err := tx.Where("date_id = ?", date.ID).Delete(&models.Conversation{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&date).Error
	})
}

// GetRatedDatesByUserID retrieves past dates carrying a rating or notes,
// most recent first, for the prompt context.
func (s *DefaultDateService) GetRatedDatesByUserID(userID uuid.UUID, limit int) ([]models.DateEntry, error) {
	var dates []models.DateEntry
	result := s.db.
		Where("user_id = ? AND (rating IS NOT NULL OR notes IS NOT NULL)", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&dates)
	if result.Error != nil {
		return nil, result.Error
	}
	return dates, nil
}
