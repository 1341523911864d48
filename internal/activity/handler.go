package activity

import (
	"net/http"

	"rowmatch/internal/api"
	"rowmatch/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateActivityResponse struct {
	Message  string    `json:"message" example:"Activity 0b6c... was created successfully !"`
	Activity *Activity `json:"activity"`
}

func currentUser(c *gin.Context) (string, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
	}
	return userID, exists
}

// CreateActivity godoc
// @Summary      Create activity
// @Description  Creates a training or competition owned by the caller.
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateActivityRequest  true  "Activity"
// @Success      201      {object}  CreateActivityResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /activities [post]
func (h *Handler) CreateActivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateActivityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, msg, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateActivityResponse{Message: msg, Activity: a})
}

// ListActivities godoc
// @Summary      List activities
// @Description  Returns upcoming activities. Activities that already started are removed.
// @Tags         activities
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Activity
// @Failure      500  {object}  api.ErrorResponse
// @Router       /activities [get]
func (h *Handler) ListActivities(c *gin.Context) {
	activities, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

// GetActivity godoc
// @Summary      Get activity
// @Tags         activities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Activity ID"
// @Success      200  {object}  Activity
// @Failure      404  {object}  api.ErrorResponse
// @Router       /activities/{id} [get]
func (h *Handler) GetActivity(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// DeleteActivity godoc
// @Summary      Delete activity
// @Description  Deletes the activity and its matches. Owner only.
// @Tags         activities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Activity ID"
// @Success      200  {object}  Activity
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /activities/{id} [delete]
func (h *Handler) DeleteActivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	a, err := h.service.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// UpdateActivity godoc
// @Summary      Update activity
// @Description  Merges the given fields into the activity. Owner only.
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Activity ID"
// @Param        request  body      UpdateActivityRequest  true  "Fields to change"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /activities/{id} [patch]
func (h *Handler) UpdateActivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	msg, err := h.service.Update(c.Request.Context(), c.Param("id"), userID, req)
	h.respond(c, msg, err)
}

// SignUp godoc
// @Summary      Sign up for activity
// @Description  Applies the caller. Omitted fields are taken from the caller's profile.
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string      true   "Activity ID"
// @Param        request  body      SignUpBody  false  "Sign-up details"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /activities/{id}/sign-up [post]
func (h *Handler) SignUp(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var body SignUpBody
	if c.Request.ContentLength != 0 && !api.BindJSON(c, &body) {
		return
	}

	msg, err := h.service.SignUp(c.Request.Context(), c.Param("id"), userID, body)
	h.respond(c, msg, err)
}

// SignOff godoc
// @Summary      Sign off from activity
// @Description  Withdraws the caller. A matched position becomes open again.
// @Tags         activities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Activity ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /activities/{id}/sign-off [post]
func (h *Handler) SignOff(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	msg, err := h.service.SignOff(c.Request.Context(), c.Param("id"), userID)
	h.respond(c, msg, err)
}

// Accept godoc
// @Summary      Accept applicant
// @Description  Assigns an applicant to an open position. Owner only.
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string     true  "Activity ID"
// @Param        request  body      Selection  true  "Applicant and position"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /activities/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var sel Selection
	if !api.BindJSON(c, &sel) {
		return
	}

	msg, err := h.service.Accept(c.Request.Context(), c.Param("id"), userID, sel)
	h.respond(c, msg, err)
}

// Reject godoc
// @Summary      Reject applicant
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string       true  "Activity ID"
// @Param        request  body      UserRequest  true  "Applicant"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /activities/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req UserRequest
	if !api.BindJSON(c, &req) {
		return
	}

	msg, err := h.service.Reject(c.Request.Context(), c.Param("id"), userID, req.UserID)
	h.respond(c, msg, err)
}

// Kick godoc
// @Summary      Kick user
// @Description  Removes an applicant or participant. The freed position is not reopened.
// @Tags         activities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string       true  "Activity ID"
// @Param        request  body      UserRequest  true  "User to remove"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /activities/{id}/kick [post]
func (h *Handler) Kick(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req UserRequest
	if !api.BindJSON(c, &req) {
		return
	}

	msg, err := h.service.Kick(c.Request.Context(), c.Param("id"), userID, req.UserID)
	h.respond(c, msg, err)
}

// Participants godoc
// @Summary      List participants
// @Description  Returns the matched users of an activity with their positions.
// @Tags         activities
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Activity ID"
// @Success      200  {array}   Participant
// @Failure      404  {object}  api.ErrorResponse
// @Router       /activities/{id}/participants [get]
func (h *Handler) Participants(c *gin.Context) {
	participants, err := h.service.Participants(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

func (h *Handler) respond(c *gin.Context, msg string, err error) {
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}
