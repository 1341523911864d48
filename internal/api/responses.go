package api

import (
	"net/http"

	"rowmatch/internal/apperr"
	"rowmatch/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status     string `json:"status" example:"ok"`
	EmailQueue int64  `json:"email_queue" example:"0"`
}

// RespondError writes err with the status of its apperr kind. Unclassified errors are logged and hidden.
func RespondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Message: message})
}
