package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// ActionHandler exposes support action endpoints.
type ActionHandler struct {
	actions *service.ActionService
}

// NewActionHandler constructs handler.
func NewActionHandler(actions *service.ActionService) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// Create godoc
// @Summary Request a support action from the innovator
// @Tags Actions
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.CreateActionRequest true "Action payload"
// @Success 201 {object} response.Envelope
// @Router /innovations/{innovationId}/actions [post]
func (h *ActionHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	action, err := h.actions.Create(c.Request.Context(), actor, c.Param("innovationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, action)
}

// Update godoc
// @Summary Update an action's status
// @Tags Actions
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param actionId path string true "Action id"
// @Param payload body models.UpdateActionRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/actions/{actionId} [put]
func (h *ActionHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var (
		action *models.Action
		err    error
	)
	if actor.Type == models.UserTypeInnovator {
		action, err = h.actions.UpdateByInnovator(c.Request.Context(), actor, c.Param("innovationId"), c.Param("actionId"), req)
	} else {
		action, err = h.actions.UpdateByAccessor(c.Request.Context(), actor, c.Param("innovationId"), c.Param("actionId"), req)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, action, nil)
}

// Get godoc
// @Summary Fetch one action with resolved names
// @Tags Actions
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param actionId path string true "Action id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/actions/{actionId} [get]
func (h *ActionHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.actions.Find(c.Request.Context(), actor, c.Param("innovationId"), c.Param("actionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List actions of one innovation
// @Tags Actions
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/actions [get]
func (h *ActionHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	actions, err := h.actions.ListByInnovation(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, actions, nil)
}

// Worklist godoc
// @Summary List actions created by the calling accessor across innovations
// @Tags Actions
// @Produce json
// @Param open_only query bool false "Only open actions"
// @Param status query string false "Comma separated status filter"
// @Success 200 {object} response.Envelope
// @Router /actions [get]
func (h *ActionHandler) Worklist(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.ActionFilter{
		OpenOnly:     c.Query("open_only") == "true",
		InnovationID: c.Query("innovation_id"),
		ListOptions:  listOptionsFromQuery(c),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, models.ActionStatus(strings.TrimSpace(s)))
		}
	}
	items, total, err := h.actions.ListByCreator(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, paginationFor(filter.ListOptions, total))
}
