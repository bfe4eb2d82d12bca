package api

import (
	"net/http"

	apperrors "wingman_go_backend/internal/errors"
	"wingman_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// searchPlacesHandler proxies a venue text search so the maps API key never
// reaches the browser.
func searchPlacesHandler(mapsService *services.MapsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("query")
		if query == "" {
			apperrors.HandleError(c, apperrors.New400Error("Query parameter is required"))
			return
		}

		places, err := mapsService.SearchPlaces(c.Request.Context(), query, c.Query("location"))
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": places})
	}
}

func distanceMatrixHandler(mapsService *services.MapsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Origins      []string `json:"origins"`
			Destinations []string `json:"destinations"`
			Mode         string   `json:"mode"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || len(request.Origins) == 0 || len(request.Destinations) == 0 {
			apperrors.HandleError(c, apperrors.New400Error("Origins and destinations are required"))
			return
		}

		results, err := mapsService.DistanceMatrix(c.Request.Context(), request.Origins, request.Destinations, request.Mode)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
