package services

import (
	"context"
	"errors"
	"fmt"

	"wingman_go_backend/internal/broker"
	"wingman_go_backend/internal/models"

	"gorm.io/gorm"
)

// TurnRunner abstracts the model round-trip loop for the turn service.
type TurnRunner interface {
	RunTurn(ctx context.Context, message string, history []models.ChatMessage, systemPrompt string) (string, error)
}

// ChatTurnService coordinates one inbound chat message end to end: context
// assembly, the model loop, and persistence of the finished turn.
type ChatTurnService struct {
	orchestrator    TurnRunner
	conversations   ConversationServiceDB
	dates           DateServiceDB
	users           *UserService
	events          *broker.Broker
	ratedDatesLimit int
}

func NewChatTurnService(
	orchestrator TurnRunner,
	conversations ConversationServiceDB,
	dates DateServiceDB,
	users *UserService,
	events *broker.Broker,
	ratedDatesLimit int,
) *ChatTurnService {
	return &ChatTurnService{
		orchestrator:    orchestrator,
		conversations:   conversations,
		dates:           dates,
		users:           users,
		events:          events,
		ratedDatesLimit: ratedDatesLimit,
	}
}

// RunGuestTurn handles an anonymous message: generic context, no history,
// nothing persisted.
func (s *ChatTurnService) RunGuestTurn(ctx context.Context, message string) (string, error) {
	systemPrompt := BuildSystemPrompt(nil, nil)
	reply, err := s.orchestrator.RunTurn(ctx, message, nil, systemPrompt)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// RunUserTurn handles an authenticated message: loads history when a
// conversation id is supplied (ownership-scoped), assembles the profile and
// rated-date context, runs the model loop, and persists both sides of the
// turn atomically. The conversation is created lazily on the first message.
// A supplied id that doesn't resolve to one of the user's conversations
// (deleted, or someone else's) is treated as no conversation: the turn runs
// with empty history and lands in a fresh conversation.
// It returns the reply and the conversation id the turn was saved to.
func (s *ChatTurnService) RunUserTurn(ctx context.Context, user *models.User, conversationID, message string) (string, string, error) {
	var history []models.ChatMessage
	if conversationID != "" {
		conversation, err := s.conversations.GetConversationForUser(conversationID, user.ID)
		switch {
		case err == nil:
			history = conversation.Messages
		case errors.Is(err, gorm.ErrRecordNotFound):
			conversationID = ""
		default:
			return "", "", fmt.Errorf("failed to load conversation: %w", err)
		}
	}

	profile, err := s.users.GetProfile(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("failed to load profile: %w", err)
	}
	pastDates, err := s.dates.GetRatedDatesByUserID(user.ID, s.ratedDatesLimit)
	if err != nil {
		return "", "", fmt.Errorf("failed to load date history: %w", err)
	}

	systemPrompt := BuildSystemPrompt(profile, pastDates)

	reply, err := s.orchestrator.RunTurn(ctx, message, history, systemPrompt)
	if err != nil {
		return "", "", err
	}

	if conversationID == "" {
		conversation, err := s.conversations.CreateConversation(user.ID, message)
		if err != nil {
			return "", "", fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conversation.ID
	}

	if err := s.conversations.AppendTurn(conversationID, message, reply); err != nil {
		return "", "", fmt.Errorf("failed to save turn: %w", err)
	}

	if s.events != nil {
		s.events.Publish("conversation_update_"+user.ID.String(), conversationID)
	}

	return reply, conversationID, nil
}
