package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "wingman_go_backend/internal/errors"
	"wingman_go_backend/internal/guest"
	"wingman_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	Reply             string `json:"reply"`
	IsGuest           bool   `json:"isGuest"`
	MessagesRemaining *int   `json:"messagesRemaining"`
	ConversationID    string `json:"conversationId"`
}

// chatHandler accepts one user message and returns the assistant's reply.
// Callers need either a bearer token or a valid, non-exhausted guest cookie.
func chatHandler(turnService services.TurnService, guestManager *guest.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, authenticated := currentUser(c)

		if authenticated {
			var request chatRequest
			if err := c.ShouldBindJSON(&request); err != nil || request.Message == "" {
				apperrors.HandleError(c, apperrors.New400Error("Message is required"))
				return
			}

			reply, conversationID, err := turnService.RunUserTurn(c.Request.Context(), user, request.ConversationID, request.Message)
			if err != nil {
				apperrors.HandleError(c, err)
				return
			}

			c.JSON(http.StatusOK, chatResponse{
				Reply:          reply,
				IsGuest:        false,
				ConversationID: conversationID,
			})
			return
		}

		// Guest path: the cookie is the credential and the quota state.
		rawToken, err := c.Cookie(guest.CookieName)
		if err != nil {
			apperrors.HandleError(c, apperrors.New401Error("Unauthorized. Please log in or use as guest."))
			return
		}

		session, remaining, err := guestManager.Authorize(rawToken)
		if err != nil {
			switch {
			case errors.Is(err, guest.ErrQuotaExceeded):
				message := fmt.Sprintf("Guest limit of %d messages reached. Please sign up to continue.", guestManager.MaxMessages())
				apperrors.HandleError(c, apperrors.New403Error(message))
			default:
				apperrors.HandleError(c, apperrors.New401Error("Invalid guest session"))
			}
			return
		}

		var request chatRequest
		if err := c.ShouldBindJSON(&request); err != nil || request.Message == "" {
			apperrors.HandleError(c, apperrors.New400Error("Message is required"))
			return
		}

		reply, err := turnService.RunGuestTurn(c.Request.Context(), request.Message)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		// Charge the quota only once the turn has been accepted, and
		// re-issue the cookie as the sole carrier of that state.
		updated := guestManager.RecordUsage(session)
		if err := setGuestCookie(c, guestManager, updated); err != nil {
			apperrors.HandleError(c, err)
			return
		}

		messagesRemaining := remaining - 1
		c.JSON(http.StatusOK, chatResponse{
			Reply:             reply,
			IsGuest:           true,
			MessagesRemaining: &messagesRemaining,
			ConversationID:    "",
		})
	}
}

// createGuestSessionHandler issues a fresh guest session cookie for a
// first-time anonymous visitor.
func createGuestSessionHandler(guestManager *guest.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := guestManager.Issue()
		if err := setGuestCookie(c, guestManager, session); err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messagesRemaining": guestManager.MaxMessages(),
			"expiresAt":         session.ExpiresAt.Format(time.RFC3339),
		})
	}
}

func setGuestCookie(c *gin.Context, guestManager *guest.Manager, session guest.Session) error {
	value, err := guestManager.Encode(session)
	if err != nil {
		return apperrors.LogAndReturn500(err)
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	secure := gin.Mode() == gin.ReleaseMode

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(guest.CookieName, value, maxAge, "/", "", secure, true)
	return nil
}
