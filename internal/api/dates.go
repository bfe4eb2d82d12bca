package api

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "wingman_go_backend/internal/errors"
	"wingman_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// getDatesHandler lists the user's dates, newest first, with linked
// conversation summaries.
func getDatesHandler(dateService services.DateServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		dates, err := dateService.GetDatesByUserID(user.ID)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"dates": dates})
	}
}

func createDateHandler(dateService services.DateServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		var request struct {
			Name           string  `json:"name"`
			ConversationID *string `json:"conversationId"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.Name == "" {
			apperrors.HandleError(c, apperrors.New400Error("Date name is required"))
			return
		}

		date, err := dateService.CreateDate(user.ID, request.Name, request.ConversationID)
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				apperrors.HandleError(c, apperrors.New404Error("Conversation not found"))
			case errors.Is(err, services.ErrConversationLinked):
				apperrors.HandleError(c, apperrors.New400Error("This conversation is already linked to a date"))
			default:
				apperrors.HandleError(c, err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"date": date})
	}
}

// updateDateHandler records a rating and/or notes on a past date.
func updateDateHandler(dateService services.DateServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid date id"))
			return
		}

		var request struct {
			Rating *int    `json:"rating"`
			Notes  *string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid payload"))
			return
		}

		date, err := dateService.UpdateDate(uint(id), user.ID, request.Rating, request.Notes)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperrors.HandleError(c, apperrors.New404Error("Date not found"))
				return
			}
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"date": date})
	}
}

func deleteDateHandler(dateService services.DateServiceDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid date id"))
			return
		}

		if err := dateService.DeleteDate(uint(id), user.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperrors.HandleError(c, apperrors.New404Error("Date not found"))
				return
			}
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
