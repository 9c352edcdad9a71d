package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// UserHandler exposes user profile and admin endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me godoc
// @Summary Fetch the caller's directory-enriched profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.users.Me(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Create godoc
// @Summary Provision a platform user (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update directory fields of a user (admin only)
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Router /users [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.users.Update(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "updated"}, nil)
}
