package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the optional preference fields the assistant personalizes
// on. Every field is nullable; unset fields are omitted from the prompt
// context entirely.
type UserProfile struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	UserID              uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Age                 *int      `json:"age"`
	Location            *string   `json:"location"`
	Gender              *string   `json:"gender"`
	Interests           *string   `json:"interests"`
	DatingGoals         *string   `json:"datingGoals"`
	DatingStyle         *string   `json:"datingStyle"`
	Budget              *string   `json:"budget"`
	Outdoor             *bool     `json:"outdoor"`
	Social              *bool     `json:"social"`
	DietaryRestrictions *string   `json:"dietaryRestrictions"`
	AdditionalNotes     *string   `json:"additionalNotes"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}
