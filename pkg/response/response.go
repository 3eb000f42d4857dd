package response

import (
	"log"
	"net/http"

	"forumcore/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetViewerID retrieves the authenticated viewer id from the context. Every
// listing and mutation call threads this id explicitly; nothing downstream
// reads it from ambient state.
func GetViewerID(c *gin.Context) (uuid.UUID, error) {
	viewerIDStr, exists := c.Get("viewer_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	viewerID, err := uuid.Parse(viewerIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return viewerID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
