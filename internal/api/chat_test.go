package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wingman_go_backend/internal/guest"
	"wingman_go_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTurnService struct {
	guestReply string
	userReply  string
	convID     string
	err        error

	guestCalls int
	userCalls  int
}

func (s *stubTurnService) RunGuestTurn(ctx context.Context, message string) (string, error) {
	s.guestCalls++
	return s.guestReply, s.err
}

func (s *stubTurnService) RunUserTurn(ctx context.Context, user *models.User, conversationID, message string) (string, string, error) {
	s.userCalls++
	if s.convID != "" {
		conversationID = s.convID
	}
	return s.userReply, conversationID, s.err
}

func newChatRouter(turnService *stubTurnService, guestManager *guest.Manager, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/chat", func(c *gin.Context) {
		if user != nil {
			c.Set("user", user)
		}
		c.Next()
	}, chatHandler(turnService, guestManager))
	r.POST("/api/guest/session", createGuestSessionHandler(guestManager))
	return r
}

func postChat(r *gin.Engine, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func guestCookie(t *testing.T, manager *guest.Manager, used int) *http.Cookie {
	t.Helper()
	session := manager.Issue()
	session.MessagesUsed = used
	value, err := manager.Encode(session)
	require.NoError(t, err)
	return &http.Cookie{Name: guest.CookieName, Value: value}
}

func TestChatAuthenticatedUser(t *testing.T) {
	turnService := &stubTurnService{userReply: "Here's your plan", convID: "conv-1"}
	user := &models.User{ID: uuid.New()}
	r := newChatRouter(turnService, guest.NewManager(5, 24*time.Hour), user)

	w := postChat(r, `{"message": "plan a date"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var response chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Here's your plan", response.Reply)
	assert.False(t, response.IsGuest)
	assert.Equal(t, "conv-1", response.ConversationID)
	assert.Nil(t, response.MessagesRemaining)
	assert.Equal(t, 1, turnService.userCalls)
	assert.Zero(t, turnService.guestCalls)
}

func TestChatWithoutCredentialIs401(t *testing.T) {
	turnService := &stubTurnService{}
	r := newChatRouter(turnService, guest.NewManager(5, 24*time.Hour), nil)

	w := postChat(r, `{"message": "plan a date"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, turnService.guestCalls)
}

func TestChatGuestFlowChargesQuotaAfterTurn(t *testing.T) {
	turnService := &stubTurnService{guestReply: "Guest plan"}
	manager := guest.NewManager(5, 24*time.Hour)
	r := newChatRouter(turnService, manager, nil)

	w := postChat(r, `{"message": "plan a date"}`, guestCookie(t, manager, 0))

	require.Equal(t, http.StatusOK, w.Code)
	var response chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Guest plan", response.Reply)
	assert.True(t, response.IsGuest)
	require.NotNil(t, response.MessagesRemaining)
	assert.Equal(t, 4, *response.MessagesRemaining)

	// The refreshed cookie carries the incremented counter.
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var refreshed *http.Cookie
	for _, cookie := range cookies {
		if cookie.Name == guest.CookieName {
			refreshed = cookie
		}
	}
	require.NotNil(t, refreshed)
	session, err := manager.Decode(refreshed.Value)
	require.NoError(t, err)
	assert.Equal(t, 1, session.MessagesUsed)
}

func TestChatGuestExhaustedQuotaIs403(t *testing.T) {
	turnService := &stubTurnService{guestReply: "never"}
	manager := guest.NewManager(5, 24*time.Hour)
	r := newChatRouter(turnService, manager, nil)

	w := postChat(r, `{"message": "plan a date"}`, guestCookie(t, manager, 5))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Guest limit of 5 messages reached")
	assert.Zero(t, turnService.guestCalls)
}

func TestChatGuestMalformedCookieIs401(t *testing.T) {
	turnService := &stubTurnService{}
	manager := guest.NewManager(5, 24*time.Hour)
	r := newChatRouter(turnService, manager, nil)

	w := postChat(r, `{"message": "plan a date"}`, &http.Cookie{Name: guest.CookieName, Value: "garbage"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, turnService.guestCalls)
}

func TestChatGuestEmptyMessageIs400(t *testing.T) {
	turnService := &stubTurnService{}
	manager := guest.NewManager(5, 24*time.Hour)
	r := newChatRouter(turnService, manager, nil)

	w := postChat(r, `{"message": ""}`, guestCookie(t, manager, 0))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, turnService.guestCalls)
}

func TestChatGuestFailedTurnDoesNotChargeQuota(t *testing.T) {
	turnService := &stubTurnService{err: errors.New("model unavailable")}
	manager := guest.NewManager(5, 24*time.Hour)
	r := newChatRouter(turnService, manager, nil)

	w := postChat(r, `{"message": "plan a date"}`, guestCookie(t, manager, 2))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// No refreshed cookie means the stored counter is unchanged.
	for _, cookie := range w.Result().Cookies() {
		assert.NotEqual(t, guest.CookieName, cookie.Name)
	}
}

func TestCreateGuestSession(t *testing.T) {
	manager := guest.NewManager(5, 24*time.Hour)
	gin.SetMode(gin.TestMode)
	r := newChatRouter(&stubTurnService{}, manager, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/guest/session", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		MessagesRemaining int    `json:"messagesRemaining"`
		ExpiresAt         string `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 5, response.MessagesRemaining)
	assert.NotEmpty(t, response.ExpiresAt)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, guest.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	session, err := manager.Decode(cookies[0].Value)
	require.NoError(t, err)
	assert.Zero(t, session.MessagesUsed)
}
