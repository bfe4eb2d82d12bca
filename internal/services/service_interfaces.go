package services

import (
	"context"

	"wingman_go_backend/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

type PlacesClient interface {
	SearchPlaces(ctx context.Context, query, location string) ([]PlaceDetails, error)
	DistanceMatrix(ctx context.Context, origins, destinations []string, mode string) ([]DistanceResult, error)
}

type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// ModelSession is the slice of *genai.ChatSession the orchestrator needs.
type ModelSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type TurnService interface {
	RunGuestTurn(ctx context.Context, message string) (string, error)
	RunUserTurn(ctx context.Context, user *models.User, conversationID, message string) (string, string, error)
}

type ConversationServiceDB interface {
	GetConversationForUser(conversationID string, userID uuid.UUID) (*models.Conversation, error)
	CreateConversation(userID uuid.UUID, firstMessage string) (*models.Conversation, error)
	AppendTurn(conversationID, userMessage, assistantMessage string) error
	GetConversationsByUserID(userID uuid.UUID) ([]models.Conversation, error)
	DeleteConversation(conversationID string, userID uuid.UUID) error
}

type DateServiceDB interface {
	GetDatesByUserID(userID uuid.UUID) ([]models.DateEntry, error)
	CreateDate(userID uuid.UUID, name string, conversationID *string) (*models.DateEntry, error)
	UpdateDate(id uint, userID uuid.UUID, rating *int, notes *string) (*models.DateEntry, error)
	DeleteDate(id uint, userID uuid.UUID) error
	GetRatedDatesByUserID(userID uuid.UUID, limit int) ([]models.DateEntry, error)
}
