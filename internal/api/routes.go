package api

import (
	"errors"
	"net/http"

	"wingman_go_backend/internal/auth"
	apperrors "wingman_go_backend/internal/errors"
	"wingman_go_backend/internal/guest"
	"wingman_go_backend/internal/models"
	"wingman_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(
	r *gin.Engine,
	turnService services.TurnService,
	conversationService services.ConversationServiceDB,
	dateService services.DateServiceDB,
	userService *services.UserService,
	mapsService *services.MapsService,
	pdfService *services.PDFService,
	guestManager *guest.Manager,
) {
	api := r.Group("/api")
	{
		api.POST("/chat", auth.OptionalAuthMiddleware(userService), chatHandler(turnService, guestManager))
		api.POST("/guest/session", createGuestSessionHandler(guestManager))
		api.GET("/conversations", auth.AuthMiddleware(userService), listConversationsHandler(conversationService))
		api.GET("/conversations/:id", auth.AuthMiddleware(userService), getConversationHandler(conversationService))
		api.DELETE("/conversations/:id", auth.AuthMiddleware(userService), deleteConversationHandler(conversationService))
		api.GET("/dates", auth.AuthMiddleware(userService), getDatesHandler(dateService))
		api.POST("/dates", auth.AuthMiddleware(userService), createDateHandler(dateService))
		api.PATCH("/dates/:id", auth.AuthMiddleware(userService), updateDateHandler(dateService))
		api.DELETE("/dates/:id", auth.AuthMiddleware(userService), deleteDateHandler(dateService))
		api.GET("/profile", auth.AuthMiddleware(userService), getProfileHandler(userService))
		api.PUT("/profile", auth.AuthMiddleware(userService), updateProfileHandler(userService))
		api.GET("/maps/search", searchPlacesHandler(mapsService))
		api.POST("/maps/distance", distanceMatrixHandler(mapsService))
		api.POST("/pdf/generate", auth.OptionalAuthMiddleware(userService), generatePDFHandler(pdfService))
	}
}

// currentUser pulls the authenticated user out of the gin context, if any.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// mustCurrentUser is for routes behind AuthMiddleware, where the user is
// always set.
func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		apperrors.HandleError(c, apperrors.New401Error("User not found in context"))
	}
	return user, ok
}

func listConversationsHandler(conversationService services.ConversationServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		conversations, err := conversationService.GetConversationsByUserID(user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"conversations": conversations})
	}
}

func getConversationHandler(conversationService services.ConversationServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		conversation, err := conversationService.GetConversationForUser(c.Param("id"), user.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperrors.HandleError(c, apperrors.New404Error("Conversation not found"))
				return
			}
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"conversation": conversation})
	}
}

func deleteConversationHandler(conversationService services.ConversationServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		if err := conversationService.DeleteConversation(c.Param("id"), user.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperrors.HandleError(c, apperrors.New404Error("Conversation not found"))
				return
			}
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func getProfileHandler(userService *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		profile, err := userService.GetProfile(user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		if profile == nil {
			profile = &models.UserProfile{UserID: user.ID}
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}

func updateProfileHandler(userService *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		var input models.UserProfile
		if err := c.ShouldBindJSON(&input); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid profile payload"))
			return
		}

		profile, err := userService.UpsertProfile(user.ID, input)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}
