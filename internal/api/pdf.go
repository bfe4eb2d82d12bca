package api

import (
	"fmt"
	"net/http"

	apperrors "wingman_go_backend/internal/errors"
	"wingman_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// generatePDFHandler renders a finished date plan as a downloadable PDF.
// Works for guests too; the user name on the cover is best-effort.
func generatePDFHandler(pdfService *services.PDFService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			DateName string `json:"dateName"`
			Content  string `json:"content"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.DateName == "" || request.Content == "" {
			apperrors.HandleError(c, apperrors.New400Error("Date name and content are required"))
			return
		}

		userName := ""
		if user, ok := currentUser(c); ok {
			userName = user.Name
		}

		pdfBytes, err := pdfService.GenerateDatePlan(request.DateName, request.Content, userName)
		if err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		filename := fmt.Sprintf("%s_wingMan.pdf", services.SanitizeFilename(request.DateName))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}
