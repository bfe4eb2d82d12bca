package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID        string        `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;index;not null" json:"-"`
	DateID    *uint         `gorm:"index" json:"dateId,omitempty"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ChatMessage is one persisted conversation turn side. Immutable once written.
type ChatMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"index;not null" json:"-"`
	Role           string    `gorm:"not null" json:"role"` // "user" or "assistant"
	Content        string    `gorm:"type:text" json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}
