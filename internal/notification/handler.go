package notification

import (
	"net/http"

	"rowmatch/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Notify godoc
// @Summary      Receive status notification
// @Description  Queues an email for a status change. Service tokens only.
// @Tags         notifications
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      Event  true  "Status change"
// @Success      202      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /notify [post]
func (h *Handler) Notify(c *gin.Context) {
	var e Event
	if !api.BindJSON(c, &e) {
		return
	}

	if err := h.service.Handle(c.Request.Context(), e); err != nil {
		api.RespondError(c, err)
		return
	}

	api.RespondMessage(c, http.StatusAccepted, "Notification queued")
}
