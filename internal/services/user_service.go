package services

import (
	"context"
	"errors"

	"wingman_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateOrUpdateUser(ctx context.Context, auth0ID, email, name, nickname string) (*models.User, error) {
	user := models.User{
		Auth0ID:  auth0ID,
		Email:    email,
		Name:     name,
		Nickname: nickname,
	}
	result := s.db.WithContext(ctx).Where(models.User{Auth0ID: auth0ID}).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// GetProfile returns the user's profile, or nil when none has been saved yet.
func (s *UserService) GetProfile(userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	result := s.db.Where("user_id = ?", userID).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &profile, nil
}

// UpsertProfile creates or replaces the user's profile fields.
func (s *UserService) UpsertProfile(userID uuid.UUID, input models.UserProfile) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ?", userID).First(&profile)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			profile = models.UserProfile{UserID: userID}
		}

		profile.Age = input.Age
		profile.Location = input.Location
		profile.Gender = input.Gender
		profile.Interests = input.Interests
		profile.DatingGoals = input.DatingGoals
		profile.DatingStyle = input.DatingStyle
		profile.Budget = input.Budget
		profile.Outdoor = input.Outdoor
		profile.Social = input.Social
		profile.DietaryRestrictions = input.DietaryRestrictions
		profile.AdditionalNotes = input.AdditionalNotes

		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
