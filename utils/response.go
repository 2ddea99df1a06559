package utils

import (
	"github.com/gin-gonic/gin"
)

// Toast is the notification the client shows after a failed action.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// RespondWithToast sends message as the error and a destructive toast for
// the client to display.
func RespondWithToast(c *gin.Context, status int, title, message string) {
	c.JSON(status, gin.H{
		"error": message,
		"toast": Toast{Title: title, Description: message, Variant: "destructive"},
	})
}
