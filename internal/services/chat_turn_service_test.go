package services

import (
	"context"
	"errors"
	"testing"

	"wingman_go_backend/internal/broker"
	"wingman_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTurnRunner struct {
	reply        string
	err          error
	gotMessage   string
	gotHistory   []models.ChatMessage
	gotSystemMsg string
	calls        int
}

func (s *stubTurnRunner) RunTurn(ctx context.Context, message string, history []models.ChatMessage, systemPrompt string) (string, error) {
	s.calls++
	s.gotMessage = message
	s.gotHistory = history
	s.gotSystemMsg = systemPrompt
	return s.reply, s.err
}

func newTestTurnService(t *testing.T, runner *stubTurnRunner) (*ChatTurnService, ConversationServiceDB, DateServiceDB, *UserService, *broker.Broker) {
	t.Helper()
	db := setupTestDB(t)

	conversations := NewConversationServiceDB(db)
	dates := NewDateServiceDB(db)
	users := NewUserService(db)
	events := broker.NewBroker()

	service := NewChatTurnService(runner, conversations, dates, users, events, 20)
	return service, conversations, dates, users, events
}

func TestRunGuestTurnUsesGenericContext(t *testing.T) {
	runner := &stubTurnRunner{reply: "Here's an idea!"}
	service, _, _, _, _ := newTestTurnService(t, runner)

	reply, err := service.RunGuestTurn(context.Background(), "plan a date")
	require.NoError(t, err)

	assert.Equal(t, "Here's an idea!", reply)
	assert.Equal(t, "plan a date", runner.gotMessage)
	assert.Empty(t, runner.gotHistory)
	assert.NotContains(t, runner.gotSystemMsg, "USER PROFILE")
	assert.NotContains(t, runner.gotSystemMsg, "PAST DATE HISTORY")
}

func TestRunUserTurnCreatesConversationLazily(t *testing.T) {
	runner := &stubTurnRunner{reply: "How about a picnic?"}
	service, conversations, _, _, _ := newTestTurnService(t, runner)

	user := &models.User{ID: uuid.New()}
	reply, conversationID, err := service.RunUserTurn(context.Background(), user, "", "plan a date for Saturday")
	require.NoError(t, err)

	assert.Equal(t, "How about a picnic?", reply)
	require.NotEmpty(t, conversationID)

	saved, err := conversations.GetConversationForUser(conversationID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "plan a date for Saturday", saved.Title)
	require.Len(t, saved.Messages, 2)
	assert.Equal(t, "user", saved.Messages[0].Role)
	assert.Equal(t, "plan a date for Saturday", saved.Messages[0].Content)
	assert.Equal(t, "assistant", saved.Messages[1].Role)
	assert.Equal(t, "How about a picnic?", saved.Messages[1].Content)
}

func TestRunUserTurnLoadsHistoryForExistingConversation(t *testing.T) {
	runner := &stubTurnRunner{reply: "Sure, let's adjust."}
	service, conversations, _, _, _ := newTestTurnService(t, runner)

	user := &models.User{ID: uuid.New()}
	conversation, err := conversations.CreateConversation(user.ID, "first message")
	require.NoError(t, err)
	require.NoError(t, conversations.AppendTurn(conversation.ID, "first message", "first reply"))

	_, conversationID, err := service.RunUserTurn(context.Background(), user, conversation.ID, "make it cheaper")
	require.NoError(t, err)

	assert.Equal(t, conversation.ID, conversationID)
	require.Len(t, runner.gotHistory, 2)
	assert.Equal(t, "first message", runner.gotHistory[0].Content)
	assert.Equal(t, "first reply", runner.gotHistory[1].Content)

	saved, err := conversations.GetConversationForUser(conversation.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Messages, 4)
}

func TestRunUserTurnStaleConversationIDStartsFresh(t *testing.T) {
	runner := &stubTurnRunner{reply: "Starting over: how about bowling?"}
	service, conversations, _, _, _ := newTestTurnService(t, runner)

	user := &models.User{ID: uuid.New()}
	reply, conversationID, err := service.RunUserTurn(context.Background(), user, "no-such-conversation", "plan a date")
	require.NoError(t, err)

	assert.Equal(t, "Starting over: how about bowling?", reply)
	assert.Equal(t, 1, runner.calls)
	assert.Empty(t, runner.gotHistory)

	// The turn lands in a freshly created conversation, not the stale id.
	require.NotEmpty(t, conversationID)
	assert.NotEqual(t, "no-such-conversation", conversationID)

	saved, err := conversations.GetConversationForUser(conversationID, user.ID)
	require.NoError(t, err)
	assert.Len(t, saved.Messages, 2)
}

func TestRunUserTurnForeignConversationIDStartsFresh(t *testing.T) {
	runner := &stubTurnRunner{reply: "fresh plan"}
	service, conversations, _, _, _ := newTestTurnService(t, runner)

	owner := uuid.New()
	conversation, err := conversations.CreateConversation(owner, "someone else's chat")
	require.NoError(t, err)
	require.NoError(t, conversations.AppendTurn(conversation.ID, "private", "secret"))

	user := &models.User{ID: uuid.New()}
	_, conversationID, err := service.RunUserTurn(context.Background(), user, conversation.ID, "hello")
	require.NoError(t, err)

	// The other user's history never reaches the model, and their
	// conversation is untouched.
	assert.Empty(t, runner.gotHistory)
	assert.NotEqual(t, conversation.ID, conversationID)

	original, err := conversations.GetConversationForUser(conversation.ID, owner)
	require.NoError(t, err)
	assert.Len(t, original.Messages, 2)
}

func TestRunUserTurnAssemblesProfileAndDateContext(t *testing.T) {
	runner := &stubTurnRunner{reply: "Tailored plan"}
	service, _, dates, users, _ := newTestTurnService(t, runner)

	user := &models.User{ID: uuid.New()}

	location := "Amsterdam"
	_, err := users.UpsertProfile(user.ID, models.UserProfile{Location: &location})
	require.NoError(t, err)

	date, err := dates.CreateDate(user.ID, "Canal tour", nil)
	require.NoError(t, err)
	rating := 5
	_, err = dates.UpdateDate(date.ID, user.ID, &rating, nil)
	require.NoError(t, err)

	_, _, err = service.RunUserTurn(context.Background(), user, "", "another date idea?")
	require.NoError(t, err)

	assert.Contains(t, runner.gotSystemMsg, "Location: Amsterdam")
	assert.Contains(t, runner.gotSystemMsg, `"Canal tour"`)
	assert.Contains(t, runner.gotSystemMsg, "Rating: 5/5 stars")
}

func TestRunUserTurnDoesNotPersistFailedTurns(t *testing.T) {
	runner := &stubTurnRunner{err: errors.New("model request failed")}
	service, conversations, _, _, _ := newTestTurnService(t, runner)

	user := &models.User{ID: uuid.New()}
	_, _, err := service.RunUserTurn(context.Background(), user, "", "plan something")
	require.Error(t, err)

	saved, err := conversations.GetConversationsByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRunUserTurnPublishesConversationUpdate(t *testing.T) {
	runner := &stubTurnRunner{reply: "done"}
	service, _, _, _, events := newTestTurnService(t, runner)

	user := &models.User{ID: uuid.New()}
	updates := events.Subscribe("conversation_update_" + user.ID.String())

	_, conversationID, err := service.RunUserTurn(context.Background(), user, "", "plan a date")
	require.NoError(t, err)

	select {
	case published := <-updates:
		assert.Equal(t, conversationID, published)
	default:
		t.Fatal("expected a conversation update to be published")
	}
}
