package models

import (
	"time"

	"github.com/google/uuid"
)

// DateEntry is a planned date the user saved. Rating and Notes are filled in
// afterwards and feed back into the prompt context for future suggestions.
type DateEntry struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"-"`
	Name          string         `gorm:"not null" json:"name"`
	Rating        *int           `json:"rating"`
	Notes         *string        `json:"notes"`
	Conversations []Conversation `gorm:"foreignKey:DateID" json:"conversations,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
